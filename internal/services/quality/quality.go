// Package quality scores how much user content a conversation has
// accumulated and decides whether it is enough to generate a diary.
package quality

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/overmind-app/overmind/internal/models"
)

// Quality levels, ordered from worst to best.
const (
	LevelInsufficient = "insufficient"
	LevelMinimal      = "minimal"
	LevelGood         = "good"
	LevelExcellent    = "excellent"
)

// Base thresholds for length_type "normal". Other length types scale them
// by their multiplier.
const (
	baseMinMessages    = 3
	baseMinTotalLength = 50
	baseMinAvgLength   = 10
)

// Total-length cutoffs for the good and excellent levels. These are fixed,
// not scaled by length type.
const (
	goodTotalLength      = 200
	excellentTotalLength = 300
)

// Report is a snapshot of conversation richness. It is returned to the
// client after every message and checked before diary generation.
type Report struct {
	IsSufficient bool    `json:"is_sufficient"`
	Level        string  `json:"level"`
	MessageCount int     `json:"message_count"`
	TotalLength  int     `json:"total_length"`
	AvgLength    float64 `json:"avg_length"`

	RequiredMessageCount int     `json:"required_message_count"`
	RequiredTotalLength  int     `json:"required_total_length"`
	RequiredAvgLength    float64 `json:"required_avg_length"`

	Feedback string `json:"feedback"`
}

func multiplier(lengthType string) float64 {
	switch lengthType {
	case models.LengthSummary:
		return 0.7
	case models.LengthDetailed:
		return 1.5
	default:
		return 1.0
	}
}

// Evaluate measures the user-authored part of a conversation against the
// thresholds for lengthType. Content length is counted in runes, not bytes,
// so Korean text is not over-weighted. An attached image relaxes the
// required message count by one (never below one).
func Evaluate(messages []models.Message, lengthType string) Report {
	mult := multiplier(lengthType)

	var (
		count    int
		total    int
		hasImage bool
	)
	for _, msg := range messages {
		if msg.Role != models.MessageRoleUser {
			continue
		}
		count++
		total += utf8.RuneCountInString(msg.Content)
		if msg.ImageURL != nil && *msg.ImageURL != "" {
			hasImage = true
		}
	}

	var avg float64
	if count > 0 {
		avg = float64(total) / float64(count)
	}

	requiredMessages := int(math.Round(baseMinMessages * mult))
	if hasImage {
		requiredMessages--
		if requiredMessages < 1 {
			requiredMessages = 1
		}
	}
	requiredTotal := int(math.Round(baseMinTotalLength * mult))
	requiredAvg := baseMinAvgLength * mult

	sufficient := count >= requiredMessages &&
		total >= requiredTotal &&
		avg >= requiredAvg

	level := LevelInsufficient
	if sufficient {
		switch {
		case total >= excellentTotalLength:
			level = LevelExcellent
		case total >= goodTotalLength:
			level = LevelGood
		default:
			level = LevelMinimal
		}
	}

	return Report{
		IsSufficient:         sufficient,
		Level:                level,
		MessageCount:         count,
		TotalLength:          total,
		AvgLength:            avg,
		RequiredMessageCount: requiredMessages,
		RequiredTotalLength:  requiredTotal,
		RequiredAvgLength:    requiredAvg,
		Feedback:             feedback(level, count, requiredMessages, total, requiredTotal, avg, requiredAvg),
	}
}

func feedback(level string, count, requiredCount, total, requiredTotal int, avg, requiredAvg float64) string {
	if level != LevelInsufficient {
		switch level {
		case LevelExcellent:
			return "훌륭해요! 아주 풍부하고 상세한 일기를 만들 수 있어요."
		case LevelGood:
			return "좋아요! 알찬 일기를 만들 수 있어요."
		default:
			return "일기를 만들 수 있어요. 조금 더 이야기하면 더 풍부한 일기가 돼요."
		}
	}

	var shortages []string
	if count < requiredCount {
		shortages = append(shortages,
			fmt.Sprintf("메시지를 %d개 더 보내주세요", requiredCount-count))
	}
	if total < requiredTotal || avg < requiredAvg {
		shortages = append(shortages, "조금 더 자세히 이야기해주세요")
	}
	if len(shortages) == 0 {
		shortages = append(shortages, "대화를 조금 더 나눠주세요")
	}
	return "아직 일기를 만들기엔 대화가 부족해요. " + strings.Join(shortages, ", ") + "."
}
