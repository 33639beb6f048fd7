package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createInput struct {
	Title      string   `json:"title" validate:"required,min=3"`
	Order      *int     `json:"order" validate:"omitempty,gte=1"`
	SectionIDs []string `json:"sectionIds" validate:"omitempty,unique"`
}

var errInvalid = errors.New("invalid input")

func TestStructReportsJSONNames(t *testing.T) {
	zero := 0
	err := Struct(createInput{Title: "ab", Order: &zero, SectionIDs: []string{"a", "a"}})
	require.Error(t, err)

	assert.ElementsMatch(t, []string{
		"title: must be at least 3 characters",
		"order: must be greater than or equal to 1",
		"sectionIds: must not contain duplicates",
	}, Messages(err))
}

func TestStructValid(t *testing.T) {
	one := 1
	assert.NoError(t, Struct(createInput{Title: "Resume", Order: &one}))
}

func TestMessagesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("%w: %w", errInvalid, Field("title", "must not be blank"))
	assert.True(t, errors.Is(err, errInvalid))
	assert.Equal(t, []string{"title: must not be blank"}, Messages(err))

	wrappedList := fmt.Errorf("%w: %w", errInvalid, Struct(createInput{}))
	assert.Equal(t, []string{"title: must not be blank"}, Messages(wrappedList))
}

func TestMessagesMalformedJSON(t *testing.T) {
	err := json.Unmarshal([]byte("{"), &struct{}{})
	assert.Equal(t, []string{"body: malformed JSON"}, Messages(err))
	assert.Nil(t, Messages(nil))
	assert.Nil(t, Messages(errors.New("other")))
}
