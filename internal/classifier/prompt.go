// Package classifier asks a chat model to turn a transcript into a ledger entry.
package classifier

import (
	"fmt"
	"strings"

	"github.com/voicebudget/voice-ledger/internal/ledger"
)

const promptTemplate = `你是一位財務記帳助手，請從下列中文語音內容中分析出：
- category：消費分類，必須為%s五選一
- amount：消費金額，為新台幣整數（請不要加上單位）
- type：%s

請僅輸出以下格式的 JSON（不得多出任何說明或註解）：
{"category": "分類名稱", "amount": 消費金額整數, "type": "%s"}

語音內容如下："%s"`

// BuildPrompt embeds the transcript verbatim into the classification instructions.
// Transport escaping is left to the request encoder.
func BuildPrompt(transcript string) string {
	categories := ledger.CategoryLabels()
	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = "「" + c + "」"
	}
	types := ledger.TypeLabels()

	return fmt.Sprintf(promptTemplate,
		strings.Join(quoted, ""),
		strings.Join(types, " 或 "),
		strings.Join(types, "或"),
		transcript)
}
