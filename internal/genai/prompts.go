package genai

import (
	"fmt"
	"strings"

	"github.com/dOtOb9/message/internal/models"
)

// unknownSender is the display-name fallback for senders missing from
// the name map.
const unknownSender = "不明"

const classifierSystemPrompt = `あなたは会話の内容からタスクやToDo項目の存在を判定する専門家です。
以下の会話内容を分析して、実行可能なタスクやアクション項目が含まれているかを判定してください。

判定基準：
1. 具体的な作業や依頼が含まれている
2. 期限や予定が設定されている
3. 何かを準備・調査・購入する必要がある
4. フォローアップや連絡が必要
5. 決定事項の実行が必要

JSON形式で以下のように回答してください：
{
  "needsTodo": true/false,
  "reason": "判定理由",
  "confidence": 0-100の数値
}`

const extractorSystemPrompt = `あなたはチャット履歴を分析して、実行可能なToDoリストを生成するAIアシスタントです。
チャットから以下のような項目を抽出してToDoとして提案してください：
1. 作業やタスクの依頼
2. 会議や打ち合わせの予定
3. 研究や調査の必要性
4. 決定事項やフォローアップ
5. 購入や手配が必要なもの

JSON形式で以下のように出力してください：
{
  "todos": [
    {
      "title": "ToDoタイトル",
      "description": "詳細説明",
      "priority": "high|medium|low",
      "category": "カテゴリ名",
      "dueDate": "YYYY-MM-DDまたはnull",
      "relatedMessages": []
    }
  ]
}`

// classifierWindow is the number of trailing messages the classifier
// looks at.
const classifierWindow = 5

// RenderChatLines renders messages as "name: text" lines for the
// classifier.
func RenderChatLines(msgs []models.Message, names map[string]string) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", senderName(m, names), m.Text))
	}
	return strings.Join(lines, "\n")
}

// RenderTranscript renders messages with timestamps for the
// extractor.
func RenderTranscript(msgs []models.Message, names map[string]string) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ts := m.CreatedAt.Format("2006/1/2 15:04:05")
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", ts, senderName(m, names), m.Text))
	}
	return strings.Join(lines, "\n")
}

func senderName(m models.Message, names map[string]string) string {
	if name, ok := names[m.SenderID]; ok && name != "" {
		return name
	}
	return unknownSender
}

// BuildClassifierRequest builds the lightweight relevance check over
// the trailing window of msgs.
func BuildClassifierRequest(model string, msgs []models.Message, names map[string]string) Request {
	window := msgs
	if len(window) > classifierWindow {
		window = window[len(window)-classifierWindow:]
	}
	return Request{
		Model:       model,
		System:      classifierSystemPrompt,
		User:        "以下の会話にToDo生成が必要な内容が含まれているか判定してください：\n\n" + RenderChatLines(window, names),
		MaxTokens:   200,
		Temperature: 0.3,
	}
}

// BuildExtractorRequest builds the full-transcript extraction call.
func BuildExtractorRequest(model string, msgs []models.Message, names map[string]string) Request {
	return Request{
		Model:       model,
		System:      extractorSystemPrompt,
		User:        "以下のチャット履歴を分析して、ToDoリストを生成してください：\n\n" + RenderTranscript(msgs, names),
		MaxTokens:   1500,
		Temperature: 0.3,
	}
}

// BuildTriggerRequest builds the legacy single-todo call the server
// trigger makes for each new message, with the preceding conversation
// as context.
func BuildTriggerRequest(model string, contextTexts []string, latest string) Request {
	var b strings.Builder
	b.WriteString("以下の会話コンテキストを考慮し、最新のメッセージに対してユーザーが後で返信や確認などの行動を起こす必要があるか判断してください。\n")
	b.WriteString("もし行動が必要な場合、「○○さんに△△の件を確認する」という形式で50文字以内のToDoを提案してください。\n")
	b.WriteString("提案するToDoには、最新のメッセージに記載されている具体的な相手の名前と確認内容を含めてください。\n")
	b.WriteString("ToDoが不要な場合や、具体的なToDoを抽出できない場合は、何も返さないでください。\n")
	b.WriteString(`返答はJSON形式でお願いします。例: {"todoContent": "鈴木さんにプロジェクトの件を確認する", "isRelevant": true}` + "\n")
	b.WriteString(`または、ToDoが不要な場合は {"isRelevant": false}` + "\n\n")
	b.WriteString("会話コンテキスト:\n")
	for _, c := range contextTexts {
		b.WriteString("- " + c + "\n")
	}
	b.WriteString("\n最新のメッセージ: " + latest)

	return Request{
		Model:       model,
		User:        b.String(),
		MaxTokens:   200,
		Temperature: 0.7,
	}
}
