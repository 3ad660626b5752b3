package prompt

import "fmt"

const ReportSystem = `あなたは大学の授業改善を支援する教育コンサルタントです。`

// ReportPrompt wraps a dashboard digest with the three-section report instruction.
func ReportPrompt(digest string) string {
	return fmt.Sprintf(`以下は講義アンケートの分析結果の要約です。

%s
この結果をもとに、講師向けのレポートを日本語で作成してください。レポートは次の3つの見出しで構成してください。

## 全体的な傾向
## 良かった点
## 改善点と具体的な提案

改善点には、次回の講義ですぐに実行できる具体的な提案を含めてください。`, digest)
}
