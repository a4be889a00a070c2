// Package prompts builds the Korean-language prompts sent to the AI
// providers for conversation, diary generation and translation.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/overmind-app/overmind/internal/models"
)

// historyWindow limits how many past turns the conversation prompt carries.
const historyWindow = 10

var koreanWeekdays = [...]string{
	"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일",
}

func profileContext(profile *models.Profile) string {
	if profile == nil {
		return ""
	}
	var parts []string
	add := func(label string, value *string) {
		if value != nil && *value != "" {
			parts = append(parts, fmt.Sprintf("- %s: %s", label, *value))
		}
	}
	add("닉네임", profile.Nickname)
	add("직업", profile.Job)
	add("취미", profile.Hobbies)
	add("가족", profile.FamilyComposition)
	add("반려동물", profile.Pets)

	if len(parts) == 0 {
		return ""
	}
	return "\n\n사용자 프로필:\n" + strings.Join(parts, "\n")
}

// Conversation builds the reply prompt for one user message, embedding the
// profile and the last turns of history (the latest user message excluded).
func Conversation(userMessage string, history []models.Message, profile *models.Profile) string {
	historyText := ""
	if len(history) > 0 {
		start := 0
		if len(history) > historyWindow {
			start = len(history) - historyWindow
		}
		var lines []string
		for _, msg := range history[start:] {
			role := "사용자"
			if msg.Role == models.MessageRoleAI {
				role = "AI"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", role, msg.Content))
		}
		historyText = "\n\n이전 대화:\n" + strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`당신은 친근하고 공감을 잘하는 일기 도우미 AI입니다.
사용자와 대화하면서 하루 일과를 자연스럽게 수집하고, 적절한 공감과 꼬리 질문을 통해 대화를 이어갑니다.

역할:
- 친근하고 따뜻한 말투 사용
- 사용자의 감정에 공감
- 하루 일과에 대해 자연스럽게 질문 (출근/퇴근, 점심, 특별한 일, 감정 등)
- 간결하고 자연스러운 응답 (1-3문장)
- 질문은 한 번에 하나씩

응답 스타일:
- "오늘 하루 어떠셨어요?"
- "점심은 뭐 드셨어요?"
- "그랬구나! 기분이 어떠셨어요?"
- "더 얘기하고 싶은 게 있으세요?"%s%s

사용자의 최신 메시지:
%s

위 메시지에 공감하고, 자연스러운 꼬리 질문을 1-2개 해주세요.
응답만 출력하고, 다른 설명은 하지 마세요.`, profileContext(profile), historyText, userMessage)
}

// QualityGuidance returns an extra steering line for the conversation
// prompt, chosen by the current quality level of the conversation.
func QualityGuidance(level string) string {
	switch level {
	case "insufficient":
		return "\n\n대화가 아직 짧으니, 사용자가 하루에 대해 더 이야기하도록 구체적인 질문을 해주세요."
	case "minimal":
		return "\n\n대화 내용을 조금 더 풍부하게 만들 수 있도록 감정이나 세부 사항을 물어봐주세요."
	case "good":
		return "\n\n대화가 충분히 쌓였으니, 자연스럽게 마무리 질문을 해도 좋아요."
	case "excellent":
		return "\n\n대화가 아주 풍부해요. 사용자가 원하면 대화를 마무리할 수 있게 해주세요."
	default:
		return ""
	}
}

// DiaryGeneration builds the full-transcript prompt that turns a
// conversation into a diary entry of the requested length.
func DiaryGeneration(messages []models.Message, lengthType string, entryDate time.Time, profile *models.Profile) string {
	var transcript strings.Builder
	for _, msg := range messages {
		role := "나"
		if msg.Role == models.MessageRoleAI {
			role = "AI"
		}
		transcript.WriteString(fmt.Sprintf("%s: %s\n", role, msg.Content))
	}

	lengthGuide := map[string]string{
		models.LengthSummary:  "5-10줄의 간단한 요약본",
		models.LengthNormal:   "20-30줄의 일반 일기",
		models.LengthDetailed: "50줄 이상의 상세한 일기",
	}
	guide, ok := lengthGuide[lengthType]
	if !ok {
		guide = "일반 일기"
	}

	profileNote := ""
	if profile != nil && profile.Nickname != nil && *profile.Nickname != "" {
		profileNote = fmt.Sprintf("\n(일기 작성 시 사용자를 '%s'이라고 부르지 말고, '나'로 작성)", *profile.Nickname)
	}

	dateStr := fmt.Sprintf("%d년 %02d월 %02d일 %s",
		entryDate.Year(), entryDate.Month(), entryDate.Day(),
		koreanWeekdays[entryDate.Weekday()])

	return fmt.Sprintf(`다음은 사용자와 AI가 나눈 하루 일과 대화입니다.
이 대화 내용을 바탕으로 자연스러운 일기를 작성해주세요.

대화 내용:
%s
일기 작성 요구사항:
- 날짜: %s
- 분량: %s
- 시간 순서대로 정리
- 사용자의 감정과 생각 반영
- 자연스러운 일기 형식
- 1인칭 ('나', '내가') 사용%s

일기 내용만 출력하고, 다른 설명은 하지 마세요.
날짜를 맨 위에 포함해주세요.`, transcript.String(), dateStr, guide, profileNote)
}

// MoodAnalysis asks for a one-word mood classification of a diary.
func MoodAnalysis(diaryContent string) string {
	return fmt.Sprintf(`다음 일기 내용에서 작성자의 전반적인 감정 상태를 분석해주세요.

일기 내용:
%s

다음 중 하나로만 답변해주세요:
- 긍정적
- 부정적
- 중립
- 복합적 (긍정과 부정이 섞임)

한 단어로만 답변하고, 다른 설명은 하지 마세요.`, diaryContent)
}

// Summary asks for a 1-2 sentence summary of a diary.
func Summary(diaryContent string) string {
	return fmt.Sprintf(`다음 일기 내용을 1-2문장으로 요약해주세요.

일기 내용:
%s

요구사항:
- 1-2문장으로 핵심 내용 요약
- 자연스러운 한국어
- 요약만 출력하고 다른 설명은 하지 마세요

요약:`, diaryContent)
}

// InitialGreeting asks the AI for a contextual opening line, adapted to
// the time of day and how far back the entry date lies.
func InitialGreeting(entryDate, now time.Time) string {
	var timeOfDay, timeContext string
	switch hour := now.Hour(); {
	case hour >= 5 && hour < 12:
		timeOfDay, timeContext = "아침", "아침이 시작되었고"
	case hour >= 12 && hour < 18:
		timeOfDay, timeContext = "점심", "점심 시간이 지나가고 있고"
	default:
		timeOfDay, timeContext = "저녁", "하루가 저물어가고 있고"
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	entry := time.Date(entryDate.Year(), entryDate.Month(), entryDate.Day(), 0, 0, 0, 0, now.Location())
	daysDiff := int(today.Sub(entry).Hours() / 24)

	var dateContext, dateInstruction string
	switch {
	case daysDiff <= 0:
		dateContext = "오늘"
		dateInstruction = "오늘 하루에 대해 물어보세요"
	case daysDiff == 1:
		dateContext = "어제"
		dateInstruction = "어제 하루에 대해 물어보세요"
	case daysDiff == 2:
		dateContext = "그저께"
		dateInstruction = "그저께 하루에 대해 물어보세요"
	case daysDiff <= 7:
		dateContext = fmt.Sprintf("%d월 %d일", int(entryDate.Month()), entryDate.Day())
		dateInstruction = fmt.Sprintf("%s의 하루에 대해 물어보세요", dateContext)
	default:
		dateContext = fmt.Sprintf("%d월 %d일", int(entryDate.Month()), entryDate.Day())
		dateInstruction = fmt.Sprintf("%s을 기억해보며 그날의 일들에 대해 물어보세요", dateContext)
	}

	return fmt.Sprintf(`당신은 친근하고 공감을 잘하는 일기 도우미 AI입니다.

현재 상황:
- 시간대: %s (%s)
- 일기 날짜: %s

사용자와 대화를 시작하기 위한 자연스러운 인사말을 생성해주세요.
시간대와 날짜를 고려하여, 짧은 인사말과 함께 %s.

요구사항:
- 1-2개의 질문만 포함
- 자연스럽고 친근한 톤
- 응답만 출력하고, 다른 설명은 하지 마세요

출력 예시:
"안녕하세요! 오늘 하루는 어떠셨나요?"

인사말:`, timeOfDay, timeContext, dateContext, dateInstruction)
}

// languageNames maps supported language codes to their English names for
// translation prompts.
var languageNames = map[string]string{
	"ko": "Korean",
	"vi": "Vietnamese",
	"en": "English",
	"zh": "Chinese",
	"ru": "Russian",
}

// LanguageInfo describes one supported translation language.
type LanguageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// SupportedLanguages is the list returned by the languages endpoint.
var SupportedLanguages = []LanguageInfo{
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt"},
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
}

// Translation builds a prompt requesting a JSON-wrapped translation.
func Translation(text, sourceLang, targetLang string) string {
	sourceName, ok := languageNames[sourceLang]
	if !ok {
		sourceName = strings.ToUpper(sourceLang)
	}
	targetName, ok := languageNames[targetLang]
	if !ok {
		targetName = strings.ToUpper(targetLang)
	}

	return fmt.Sprintf(`You are a professional translator. Translate the following text from %s to %s.

**Instructions:**
1. Provide an accurate, natural translation that preserves the original meaning and tone
2. Maintain any formatting (line breaks, punctuation)
3. Do NOT add explanations or notes
4. Respond ONLY with valid JSON in this exact format:

{
  "translated_text": "your translation here"
}

**Text to translate:**
%s

**Response (JSON only):**`, sourceName, targetName, text)
}
