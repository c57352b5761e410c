package synthesis

import "strings"

// sentence-ending runes for chunk boundaries
const sentenceEnders = ".!?。！？"

// ChunkText splits text into synthesis units of at most maxChars runes.
// Paragraph boundaries are preferred; paragraphs that are themselves too
// long are split on sentence boundaries. A chunk never ends mid-sentence,
// so a single sentence longer than maxChars is emitted whole.
func ChunkText(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentLen = 0
		}
	}

	appendUnit := func(unit string) {
		unitLen := len([]rune(unit))
		if currentLen > 0 && currentLen+unitLen+1 > maxChars {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(unit)
		currentLen += unitLen
	}

	for _, para := range splitParagraphs(text) {
		if len([]rune(para)) <= maxChars {
			appendUnit(para)
			continue
		}
		for _, sentence := range splitSentences(para) {
			appendUnit(sentence)
		}
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i, r := range runes {
		if !strings.ContainsRune(sentenceEnders, r) {
			continue
		}
		// End of sentence only when followed by whitespace or end of text
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' && runes[i+1] != '\t' {
			continue
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}
