package search

import (
	"strings"

	"github.com/poiesic/tipindex/core"
)

func containsFold(text, phrase string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(phrase)))
}

func sampleCorpus() []core.TipRecord {
	return []core.TipRecord{
		{Id: 1, Text: "Practice deep breathing for 5 minutes when feeling stressed.", Category: "stress", Tags: []string{"anxiety", "breathing"}},
		{Id: 2, Text: "Avoid screens for an hour before bed.", Category: "sleep", Tags: []string{"insomnia", "night"}},
		{Id: 3, Text: "Drink a glass of water as soon as you wake up.", Category: "hydration", Tags: []string{"morning", "water"}},
		{Id: 4, Text: "Take a short walk after lunch to aid digestion.", Category: "fitness", Tags: []string{"digestion", "walking"}},
		{Id: 5, Text: "Keep a consistent sleep schedule, even on weekends.", Category: "sleep", Tags: []string{"routine", "night"}},
		{Id: 6, Text: "Try chamomile tea to relax before sleep.", Category: "stress", Tags: []string{"sleep", "tea", "relaxation"}},
		{Id: 7, Text: "Apply a cold compress to your forehead for tension headaches.", Category: "headache", Tags: []string{"pain", "tension"}},
		{Id: 8, Text: "Stay hydrated; dehydration is a common headache trigger.", Category: "headache", Tags: []string{"water", "hydration"}},
		{Id: 9, Text: "Write down three things you are grateful for each day.", Category: "mental health", Tags: []string{"stress", "mood"}},
		{Id: 10, Text: "Stretch your neck and shoulders every hour at your desk.", Category: "posture", Tags: []string{"tension", "work"}},
		{Id: 11, Text: "Limit caffeine after noon to protect your sleep.", Category: "sleep", Tags: []string{"caffeine", "insomnia"}},
		{Id: 12, Text: "A short walk outdoors can lower stress hormones.", Category: "fitness", Tags: []string{"stress", "walking"}},
	}
}
