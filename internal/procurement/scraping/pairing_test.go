package scraping

import (
	"testing"

	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathPrefixRule(t *testing.T) {
	rule, err := NewPairer(pipeline.DevBlogSite().Pairing)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		from Locale
		to   Locale
		want string
	}{
		{"zh to en", "https://developer.nvidia.com/zh-cn/blog/cuda-graphs/", LocaleZH, LocaleEN, "https://developer.nvidia.com/blog/cuda-graphs/"},
		{"en to zh", "https://developer.nvidia.com/blog/cuda-graphs/", LocaleEN, LocaleZH, "https://developer.nvidia.com/zh-cn/blog/cuda-graphs/"},
		{"keeps query encoding", "https://developer.nvidia.com/zh-cn/blog/x/?q=a%2Fb", LocaleZH, LocaleEN, "https://developer.nvidia.com/blog/x/?q=a%2Fb"},
		{"prefix absent", "https://developer.nvidia.com/zh-cn/forums/topic/", LocaleZH, LocaleEN, "https://developer.nvidia.com/zh-cn/forums/topic/"},
		{"relative", "/zh-cn/blog/x/", LocaleZH, LocaleEN, "/zh-cn/blog/x/"},
		{"same locale", "https://developer.nvidia.com/zh-cn/blog/x/", LocaleZH, LocaleZH, "https://developer.nvidia.com/zh-cn/blog/x/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rule.Translate(tt.in, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathPrefixRoundTrip(t *testing.T) {
	rule := &PathPrefixRule{ZH: "/zh-cn/blog/", EN: "/blog/"}
	in := "https://developer.nvidia.com/zh-cn/blog/accelerating-inference/"

	en, err := rule.Translate(in, LocaleZH, LocaleEN)
	require.NoError(t, err)
	back, err := rule.Translate(en, LocaleEN, LocaleZH)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestOriginRule(t *testing.T) {
	rule, err := NewPairer(pipeline.BlogsTWSite().Pairing)
	require.NoError(t, err)

	got, err := rule.Translate("https://blogs.nvidia.com.tw/blog/2024/05/01/gtc/?p=1", LocaleZH, LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "https://blogs.nvidia.com/blog/2024/05/01/gtc/?p=1", got)

	back, err := rule.Translate(got, LocaleEN, LocaleZH)
	require.NoError(t, err)
	assert.Equal(t, "https://blogs.nvidia.com.tw/blog/2024/05/01/gtc/?p=1", back)

	_, err = rule.Translate("https://example.com/blog/x/", LocaleZH, LocaleEN)
	assert.ErrorIs(t, err, ErrNoPair)

	// the en origin is a suffix of the zh host, not the same host
	_, err = rule.Translate("https://blogs.nvidia.com/blog/x/", LocaleZH, LocaleEN)
	assert.ErrorIs(t, err, ErrNoPair)
}

func TestPairerRejectsUnknown(t *testing.T) {
	_, err := NewPairer(pipeline.PairingConfig{Rule: "dns"})
	assert.Error(t, err)

	_, err = NewOriginRule("blogs.nvidia.com.tw", "https://blogs.nvidia.com")
	assert.Error(t, err)

	rule := &PathPrefixRule{ZH: "/zh-cn/blog/", EN: "/blog/"}
	_, err = rule.Translate("https://developer.nvidia.com/blog/x/", Locale("ja-jp"), LocaleZH)
	assert.Error(t, err)
}
