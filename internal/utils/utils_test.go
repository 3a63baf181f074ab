package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-gateway-auth/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestSafeDeref(t *testing.T) {
	require.Equal(t, "", utils.SafeDeref[string](nil))
	s := "picture"
	require.Equal(t, "picture", utils.SafeDeref(&s))
}

func TestStringPtrOrNil(t *testing.T) {
	require.Nil(t, utils.StringPtrOrNil(""))
	require.Equal(t, "x", *utils.StringPtrOrNil("x"))
}

func TestTrimEmpty(t *testing.T) {
	require.Nil(t, utils.TrimEmpty(nil))
	require.Nil(t, utils.TrimEmpty([]string{" ", ""}))
	require.Equal(t, []string{"free", "beta"}, utils.TrimEmpty([]string{" free", "", "beta "}))
}
