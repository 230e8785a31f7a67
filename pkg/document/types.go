package document

import (
	"errors"
	"fmt"
)

// Placeholder texts substituted when a page lacks an expected element.
const (
	NoTitleFound   = "No title found"
	NoContentFound = "No content found"
)

// ErrInvalidPair is returned when two records cannot form an exportable pair
var ErrInvalidPair = errors.New("invalid article pair")

// ArticleLink is an absolute URL identifying one article on one locale site.
type ArticleLink string

// Field is a piece of extracted text that may be a placeholder.
type Field struct {
	Text     string `json:"text"`
	Sentinel bool   `json:"sentinel,omitempty"` // Text was substituted, not scraped
}

// Extracted wraps scraped text.
func Extracted(text string) Field {
	return Field{Text: text}
}

// Placeholder wraps a sentinel text.
func Placeholder(text string) Field {
	return Field{Text: text, Sentinel: true}
}

// Present reports whether the field carries a non-empty value.
func (f Field) Present() bool {
	return f.Text != ""
}

// ArticleRecord is one locale's rendering of an article.
type ArticleRecord struct {
	URL     string `json:"url"`
	Title   Field  `json:"title"`
	Content Field  `json:"content"`
}

// KeepPolicy decides whether placeholder fields may reach the dataset.
type KeepPolicy string

const (
	// PolicyLenient accepts placeholder text as a value
	PolicyLenient KeepPolicy = "lenient"
	// PolicyStrict rejects any pair that carries a placeholder
	PolicyStrict KeepPolicy = "strict"
)

// ArticlePair is one exported row of the parallel corpus.
// Field order is the export column order.
type ArticlePair struct {
	ENURL     string `json:"en_url"`
	ENTitle   string `json:"en_title"`
	ENContent string `json:"en_content"`
	ZHURL     string `json:"zh_url"`
	ZHTitle   string `json:"zh_title"`
	ZHContent string `json:"zh_content"`
}

// Columns lists the export columns in record order.
var Columns = []string{"en_url", "en_title", "en_content", "zh_url", "zh_title", "zh_content"}

// NewPair assembles a pair from both locale records. Nil records, empty fields
// and, under PolicyStrict, placeholder fields are rejected with ErrInvalidPair.
func NewPair(en, zh *ArticleRecord, policy KeepPolicy) (ArticlePair, error) {
	if en == nil || zh == nil {
		return ArticlePair{}, fmt.Errorf("%w: missing locale record", ErrInvalidPair)
	}

	for _, side := range []struct {
		lang string
		rec  *ArticleRecord
	}{{"en", en}, {"zh", zh}} {
		if err := checkField(side.lang, "title", side.rec.Title, policy); err != nil {
			return ArticlePair{}, err
		}
		if err := checkField(side.lang, "content", side.rec.Content, policy); err != nil {
			return ArticlePair{}, err
		}
	}

	pair := ArticlePair{
		ENURL:     en.URL,
		ENTitle:   en.Title.Text,
		ENContent: en.Content.Text,
		ZHURL:     zh.URL,
		ZHTitle:   zh.Title.Text,
		ZHContent: zh.Content.Text,
	}
	if err := pair.Validate(); err != nil {
		return ArticlePair{}, err
	}
	return pair, nil
}

func checkField(lang, name string, f Field, policy KeepPolicy) error {
	if !f.Present() {
		return fmt.Errorf("%w: %s %s is empty", ErrInvalidPair, lang, name)
	}
	if f.Sentinel && policy == PolicyStrict {
		return fmt.Errorf("%w: %s %s is a placeholder (%q)", ErrInvalidPair, lang, name, f.Text)
	}
	return nil
}

// Values returns the six fields in column order.
func (p ArticlePair) Values() []string {
	return []string{p.ENURL, p.ENTitle, p.ENContent, p.ZHURL, p.ZHTitle, p.ZHContent}
}

// Validate checks that every field is non-empty
func (p ArticlePair) Validate() error {
	for i, v := range p.Values() {
		if v == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidPair, Columns[i])
		}
	}
	return nil
}

// Dataset is the ordered, immutable result of one run.
type Dataset struct {
	name  string
	pairs []ArticlePair
}

// NewDataset copies pairs into a dataset. Every pair must validate.
func NewDataset(name string, pairs []ArticlePair) (*Dataset, error) {
	if name == "" {
		return nil, fmt.Errorf("dataset name cannot be empty")
	}
	for i, p := range pairs {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
	}
	cp := make([]ArticlePair, len(pairs))
	copy(cp, pairs)
	return &Dataset{name: name, pairs: cp}, nil
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.pairs) }

// Pairs returns a copy of the rows.
func (d *Dataset) Pairs() []ArticlePair {
	cp := make([]ArticlePair, len(d.pairs))
	copy(cp, d.pairs)
	return cp
}
