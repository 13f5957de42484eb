package tokenizer

import (
	"strconv"
	"strings"
)

var smallNumbers = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
	"seventy": 70, "eighty": 80, "ninety": 90,
}

var multipliers = map[string]int64{
	"thousand": 1_000,
	"million":  1_000_000,
	"billion":  1_000_000_000,
}

// WordsToNumbers replaces runs of English number words with digits and
// drops thousands separators: "two thousand five hundred meters" becomes
// "2500 meters", "1,000 km" becomes "1000 km". Other words are kept as is.
func WordsToNumbers(text string) string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))

	var total, current int64
	inNumber := false
	pendingAnd := false

	flush := func() {
		if inNumber {
			out = append(out, strconv.FormatInt(total+current, 10))
		}
		if pendingAnd {
			out = append(out, "and")
		}
		total, current, inNumber, pendingAnd = 0, 0, false, false
	}

	for _, f := range fields {
		w := strings.ToLower(f)
		switch {
		case isNumberWord(w):
			pendingAnd = false
			for _, part := range strings.Split(w, "-") {
				if n, ok := smallNumbers[part]; ok {
					current += n
				}
			}
			inNumber = true
		case w == "hundred" && inNumber:
			pendingAnd = false
			if current == 0 {
				current = 1
			}
			current *= 100
		case multipliers[w] != 0 && inNumber:
			pendingAnd = false
			if current == 0 {
				current = 1
			}
			total += current * multipliers[w]
			current = 0
		case w == "and" && inNumber && !pendingAnd:
			pendingAnd = true
		default:
			flush()
			out = append(out, stripThousands(f))
		}
	}
	flush()
	return strings.Join(out, " ")
}

// isNumberWord accepts "seven" and hyphenated forms such as "forty-two".
func isNumberWord(w string) bool {
	for _, part := range strings.Split(w, "-") {
		if _, ok := smallNumbers[part]; !ok {
			return false
		}
	}
	return true
}

func stripThousands(f string) string {
	if !strings.Contains(f, ",") {
		return f
	}
	digits := strings.ReplaceAll(f, ",", "")
	if _, err := strconv.ParseFloat(digits, 64); err != nil {
		return f
	}
	return digits
}
