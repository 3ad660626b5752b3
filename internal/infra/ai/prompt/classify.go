package prompt

import (
	"fmt"
	"strings"
)

const ClassifySystem = `あなたは大学の講義アンケートの自由記述コメントを分析するアシスタントです。
出力は必ず有効なJSONのみとし、マークダウンや説明文、コードフェンスを含めないでください。`

// LabelResult is the per-comment object the model returns.
type LabelResult struct {
	Sentiment  string `json:"sentiment" jsonschema:"enum=positive,enum=negative,enum=neutral"`
	Category   string `json:"category" jsonschema:"enum=講義内容,enum=講義資料,enum=運営,enum=その他"`
	Score      int    `json:"score" jsonschema:"description=importance from 1 to 10"`
	Summary    string `json:"summary" jsonschema:"description=gist in at most 20 Japanese characters"`
	IsCritical bool   `json:"is_critical"`
}

// LabelEnvelope wraps the array because structured output needs an object at the top.
type LabelEnvelope struct {
	Results []LabelResult `json:"results"`
}

// LabelSchema is the strict output schema of the classification prompt.
var LabelSchema = GenerateSchema[LabelEnvelope]()

// ClassifyPrompt numbers the comments and asks for one result per comment in order.
func ClassifyPrompt(comments []string) string {
	var list strings.Builder
	for i, c := range comments {
		fmt.Fprintf(&list, "%d. 「%s」\n", i+1, c)
	}
	return fmt.Sprintf(`以下の%d件のアンケートコメントを分析し、各コメントの分析結果を {"results": [...]} 形式のJSONで返してください。

コメントリスト:
%s
各コメントについて、以下の項目を分析してください:
1. sentiment: コメントの感情を "positive", "negative", "neutral" のいずれかで分類。
2. category: コメントの主題を "講義内容", "講義資料", "運営", "その他" のいずれかで分類。
3. score: フィードバックの重要度を1から10の整数で評価（10が最も重要）。
4. summary: コメントの要点を日本語20字以内で簡潔に要約。
5. is_critical: 誹謗中傷、個人攻撃、緊急対応が必要な内容が含まれる場合はtrue、そうでなければfalse。

results配列は必ず%d要素とし、入力されたコメントリストの順番に対応させてください。
例: {"results": [{"sentiment": "positive", "category": "講義内容", "score": 7, "summary": "説明が分かりやすい", "is_critical": false}]}`,
		len(comments), list.String(), len(comments))
}
