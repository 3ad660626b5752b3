package prompt

import (
	"fmt"
	"strings"
)

const ClusterSystem = `あなたはアンケートの自由記述をテーマごとに整理するアナリストです。
出力は必ず有効なJSONのみとしてください。`

type ThemeResult struct {
	Theme                 string `json:"theme"`
	Count                 int    `json:"count"`
	RepresentativeComment string `json:"representative_comment"`
}

type ThemeEnvelope struct {
	Themes []ThemeResult `json:"themes"`
}

var ThemeSchema = GenerateSchema[ThemeEnvelope]()

// ClusterPrompt asks for exactly k themes over the given comments.
func ClusterPrompt(comments []string, k int) string {
	var list strings.Builder
	for _, c := range comments {
		fmt.Fprintf(&list, "- %s\n", c)
	}
	return fmt.Sprintf(`以下の%d件のコメントを内容の近さでグループ化し、主要なテーマを%d個抽出してください。

コメント:
%s
各テーマについて以下を {"themes": [...]} 形式のJSONで返してください:
- theme: テーマを表す短いタイトル
- count: そのテーマに該当するおおよそのコメント数
- representative_comment: そのテーマを代表するコメントを原文のまま1件

themes配列は該当コメント数の多い順に、ちょうど%d要素としてください。`,
		len(comments), k, list.String(), k)
}
