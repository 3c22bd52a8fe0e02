package habits

var ritualMessages = []string{
	"Your constellation shines brighter",
	"Another night preserved",
	"Stars aligned",
	"Progress flows gently",
	"The sky remembers",
}

// RitualMessage is the line shown after saving the day. pick returns an
// index in [0, n) and chooses among the encouraging messages.
func RitualMessage(completed, total int, pick func(n int) int) string {
	switch {
	case completed == 0:
		return "Rest is part of the journey"
	case completed == total:
		return "A complete constellation " + DefaultIcon
	}
	i := 0
	if pick != nil {
		i = pick(len(ritualMessages))
	}
	if i < 0 || i >= len(ritualMessages) {
		i = 0
	}
	return ritualMessages[i]
}
