package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/bpack/pkg/errors"
)

const emptySum = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestSum(t *testing.T) {
	assert.Equal(t, emptySum, Sum(nil))
	assert.Len(t, Sum([]byte("crate")), 64)
	assert.Equal(t, Sum([]byte("crate")), Sum([]byte("crate")))
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
		ok   bool
	}{
		{"match", "", emptySum, true},
		{"prefixed and upper case", "", "sha256:E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855", true},
		{"no published digest", "anything", "", true},
		{"mismatch", "tampered", emptySum, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify([]byte(tt.data), tt.want)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsErrorCode(err, errors.ErrFetch))
		})
	}
}
