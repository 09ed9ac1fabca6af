package mood

import "fmt"

// Label is one of the four mood labels surfaced to the chat backend
type Label string

const (
	Calm    Label = "calm"
	Sad     Label = "sad"
	Anxious Label = "anxious"
	Neutral Label = "neutral"
)

// Labels lists every valid mood label
var Labels = []Label{Calm, Sad, Anxious, Neutral}

// Emotion is a raw seven-way classifier output label
type Emotion string

const (
	EmotionAngry    Emotion = "angry"
	EmotionDisgust  Emotion = "disgust"
	EmotionFear     Emotion = "fear"
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionSurprise Emotion = "surprise"
	EmotionNeutral  Emotion = "neutral"
)

// Emotions is the classifier's output order; index i of a probability
// vector corresponds to Emotions[i].
var Emotions = []Emotion{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

// emotionToMood collapses the seven raw emotions onto the four mood labels.
// Total and fixed: every emotion maps to exactly one label.
var emotionToMood = map[Emotion]Label{
	EmotionAngry:    Anxious,
	EmotionDisgust:  Anxious,
	EmotionFear:     Anxious,
	EmotionHappy:    Calm,
	EmotionSad:      Sad,
	EmotionSurprise: Neutral,
	EmotionNeutral:  Neutral,
}

// MoodForEmotion maps a raw emotion onto its mood label, defaulting to
// Neutral for anything unknown.
func MoodForEmotion(e Emotion) Label {
	if label, ok := emotionToMood[e]; ok {
		return label
	}
	return Neutral
}

// Info is display metadata for a mood label
type Info struct {
	Title       string
	Description string
	Icon        string
}

var moodInfo = map[Label]Info{
	Calm:    {Title: "Calm", Description: "Feeling peaceful and relaxed", Icon: "😌"},
	Sad:     {Title: "Sad", Description: "Feeling down or melancholy", Icon: "😢"},
	Anxious: {Title: "Anxious", Description: "Feeling worried or stressed", Icon: "😰"},
	Neutral: {Title: "Neutral", Description: "Feeling balanced and steady", Icon: "😐"},
}

// InfoFor returns display metadata for a label, defaulting to Neutral
func InfoFor(label Label) Info {
	if info, ok := moodInfo[label]; ok {
		return info
	}
	return moodInfo[Neutral]
}

// FormatConfidence renders a confidence as a whole percentage, e.g. "87%"
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%d%%", int(confidence*100+0.5))
}
