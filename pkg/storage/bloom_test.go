package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tcfw/mastersched/pkg/name"
)

func TestBloom(t *testing.T) {
	names := []name.Name{
		name.MustParse("master.a"),
		name.MustParse("master.b"),
	}

	b, err := MakeBloom(names)
	if err != nil {
		t.Fatal(err)
	}

	yes, err := BloomContains(b, names[0])
	if err != nil {
		t.Fatal(err)
	}

	assert.True(t, yes)

	no, err := BloomContains(b, name.MustParse("outsider"))
	if err != nil {
		t.Fatal(err)
	}

	assert.False(t, no)
}

func TestBloomBadFilter(t *testing.T) {
	_, err := BloomContains([]byte{1, 2, 3}, name.MustParse("master.a"))
	assert.Error(t, err)
}
