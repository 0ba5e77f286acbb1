// Package parser converts player utterances into Sentence structs.
// Intentionally dumb: no NLP, just a fixed tokenization grammar.
//
// Grammar: <verb> [amount] <object words...>
// The verb is the first word after alias expansion. The amount is the second
// word when it is a positive integer or a number word, otherwise 1. Articles
// are dropped from the object.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/parley/types"
)

var verbAliases = map[string]string{
	// Trade
	"purchase": "buy",
	"order":    "buy",

	// Greetings / farewells
	"goodbye": "bye",
	"hey":     "hi",

	// Quests
	"mission": "quest",
	"errand":  "quest",

	// Confirmation
	"y":    "yes",
	"yeah": "yes",
	"yep":  "yes",
	"ok":   "yes",
	"n":    "no",
	"nope": "no",
	"nah":  "no",
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "some": true,
}

// punctuation trimmed from both ends of every word.
const punctuation = ".,!?;:\"'"

// Parse converts a raw utterance into a Sentence.
func Parse(input string) types.Sentence {
	sentence := types.Sentence{Raw: input, Amount: 1}

	words := Normalize(input)
	if len(words) == 0 {
		return sentence
	}

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	sentence.Words = words
	sentence.Normalized = strings.Join(words, " ")
	sentence.Verb = words[0]

	rest := words[1:]
	if len(rest) > 0 {
		if n, ok := parseAmount(rest[0]); ok {
			sentence.Amount = n
			rest = rest[1:]
		}
	}
	sentence.Object = strings.Join(stripArticles(rest), " ")
	return sentence
}

// Normalize lowercases the input, trims punctuation from every word and
// collapses whitespace. Words that consist only of punctuation are dropped.
func Normalize(input string) []string {
	fields := strings.Fields(strings.ToLower(input))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := strings.Trim(f, punctuation); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// NormalizeTrigger returns the canonical form of a trigger phrase, or "" if
// the phrase has no words. Verb aliases are applied so that a trigger
// registered as "goodbye" matches the utterance "goodbye".
func NormalizeTrigger(trigger string) string {
	words := Normalize(trigger)
	if len(words) == 0 {
		return ""
	}
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}
	return strings.Join(words, " ")
}

// Prefixes returns every leading word prefix of the sentence, longest first.
// "buy 5 swords" yields "buy 5 swords", "buy 5", "buy".
func Prefixes(s types.Sentence) []string {
	prefixes := make([]string, 0, len(s.Words))
	for n := len(s.Words); n > 0; n-- {
		prefixes = append(prefixes, strings.Join(s.Words[:n], " "))
	}
	return prefixes
}

// Singular returns a naive singular form of an English noun phrase by
// inflecting its last word. It is used to match "5 swords" against "sword".
func Singular(phrase string) string {
	i := strings.LastIndexByte(phrase, ' ')
	head, last := phrase[:i+1], phrase[i+1:]
	switch {
	case strings.HasSuffix(last, "ies") && len(last) > 3:
		last = last[:len(last)-3] + "y"
	case strings.HasSuffix(last, "ches"), strings.HasSuffix(last, "shes"),
		strings.HasSuffix(last, "xes"), strings.HasSuffix(last, "sses"):
		last = last[:len(last)-2]
	case strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss") && len(last) > 1:
		last = last[:len(last)-1]
	}
	return head + last
}

// Plural returns "<count> <noun>" with the noun inflected for count.
func Plural(count int, noun string) string {
	return strconv.Itoa(count) + " " + PluralNoun(count, noun)
}

// PluralNoun inflects a noun for count without prefixing the count.
func PluralNoun(count int, noun string) string {
	if count == 1 {
		return noun
	}
	switch {
	case noun == "":
		return noun
	case strings.HasSuffix(noun, "y") && len(noun) > 1 && !strings.ContainsRune("aeiou", rune(noun[len(noun)-2])):
		return noun[:len(noun)-1] + "ies"
	case strings.HasSuffix(noun, "s"), strings.HasSuffix(noun, "x"),
		strings.HasSuffix(noun, "ch"), strings.HasSuffix(noun, "sh"):
		return noun + "es"
	default:
		return noun + "s"
	}
}

// MaxAmount is the largest quantity a sentence can carry.
const MaxAmount = 1000

// parseAmount reads a positive quantity of at most MaxAmount from a word.
func parseAmount(word string) (int, bool) {
	if n, ok := numberWords[word]; ok {
		return n, true
	}
	n, err := strconv.Atoi(word)
	if err != nil || n <= 0 || n > MaxAmount {
		return 0, false
	}
	return n, true
}

// stripArticles removes articles from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}
