package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVIPList(t *testing.T) {
	t.Run("splits on newlines and commas", func(t *testing.T) {
		raw := "alice@example.com\r\nbob@example.com\ncarol@example.com,dave@example.com"
		got := ParseVIPList(raw)
		assert.Equal(t, []string{
			"alice@example.com",
			"bob@example.com",
			"carol@example.com",
			"dave@example.com",
		}, got)
	})

	t.Run("trims and lowercases entries", func(t *testing.T) {
		got := ParseVIPList("  Alice@Example.COM  \n\tBOB@example.com ")
		assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, got)
	})

	t.Run("drops invalid and empty entries", func(t *testing.T) {
		got := ParseVIPList("not-an-email\n\n,alice@example.com,@nope")
		assert.Equal(t, []string{"alice@example.com"}, got)
	})

	t.Run("dedupes repeated addresses", func(t *testing.T) {
		got := ParseVIPList("alice@example.com\nAlice@example.com")
		assert.Equal(t, []string{"alice@example.com"}, got)
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, ParseVIPList("   "))
	})
}

func TestCourseIsVIP(t *testing.T) {
	course := Course{VIPList: "alice@example.com\nbob@example.com"}

	assert.True(t, course.IsVIP("alice@example.com"))
	assert.True(t, course.IsVIP("  ALICE@example.com "))
	assert.False(t, course.IsVIP("mallory@example.com"))
	assert.False(t, course.IsVIP(""))

	// substring of a listed address must not match
	assert.False(t, course.IsVIP("lice@example.com"))
}
