package rpspresenter

import "strings"

const (
	seeMorePadding  = 500
	zeroWidthSpace  = "\u200b"
	seeMoreMinLines = 4
)

// foldSeeMore keeps the first line visible and pushes the rest behind
// KakaoTalk's '전체보기' fold with zero-width padding. Short text is returned as is.
func foldSeeMore(text string) string {
	if strings.Count(text, "\n")+1 < seeMoreMinLines {
		return text
	}
	header, body, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimSpace(body) == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + seeMorePadding*len(zeroWidthSpace) + 1)
	b.WriteString(strings.TrimSpace(header))
	b.WriteString(strings.Repeat(zeroWidthSpace, seeMorePadding))
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}
