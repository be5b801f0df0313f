package quizgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/abhisek/quizbot/internal/llm"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	trans        ut.Translator
)

func recordValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		english := en.New()
		uni := ut.New(english, english)
		trans, _ = uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	})
	return validate, trans
}

// wireRecord mirrors Record with a pointer index so a missing field can be
// told apart from 0.
type wireRecord struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectOptionID *int     `json:"correct_option_id"`
	Explanation     string   `json:"explanation"`
}

// DecodeRecord parses raw model output into a validated Record. Surrounding
// whitespace and Markdown code fences are ignored. Blank content wraps
// ErrUpstreamUnavailable; every other failure wraps ErrMalformedContent.
func DecodeRecord(raw []byte) (Record, error) {
	text := llm.StripCodeFence(string(raw))
	if text == "" {
		return Record{}, fmt.Errorf("%w: empty content", ErrUpstreamUnavailable)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var w wireRecord
	if err := dec.Decode(&w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	if dec.More() {
		return Record{}, fmt.Errorf("%w: trailing data after record", ErrMalformedContent)
	}
	if w.CorrectOptionID == nil {
		return Record{}, fmt.Errorf("%w: correct_option_id is required", ErrMalformedContent)
	}

	rec := Record{
		Question:        strings.TrimSpace(w.Question),
		Options:         w.Options,
		CorrectOptionID: *w.CorrectOptionID,
		Explanation:     strings.TrimSpace(w.Explanation),
	}
	if err := ValidateRecord(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ValidateRecord checks the record invariants: a non-empty question, exactly
// four distinct non-empty options of at most 100 characters, an index in
// [0,3] and an explanation of at most 200 characters. Lengths count runes.
func ValidateRecord(rec Record) error {
	v, tr := recordValidator()
	if err := v.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Translate(tr))
			}
			return fmt.Errorf("%w: %s", ErrMalformedContent, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	for i, opt := range rec.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is blank", ErrMalformedContent, i)
		}
	}
	return nil
}
