package expect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorikeet-run/lorikeet/internal/plan"
)

func TestCheck_AnyAlwaysPasses(t *testing.T) {
	t.Parallel()
	require.NoError(t, Check(plan.Expect{Kind: plan.ExpectAny}, "whatever"))
}

func TestCheck_MatchesPasses(t *testing.T) {
	t.Parallel()
	require.NoError(t, Check(plan.Expect{Kind: plan.ExpectMatches, Pattern: "^ok"}, "ok done"))
}

func TestCheck_MatchesFails(t *testing.T) {
	t.Parallel()
	require.Error(t, Check(plan.Expect{Kind: plan.ExpectMatches, Pattern: "^ok"}, "fail"))
}

func TestCheck_MatchesNotPasses(t *testing.T) {
	t.Parallel()
	require.NoError(t, Check(plan.Expect{Kind: plan.ExpectMatchesNot, Pattern: "error"}, "all good"))
}

func TestCheck_MatchesNotFails(t *testing.T) {
	t.Parallel()
	require.Error(t, Check(plan.Expect{Kind: plan.ExpectMatchesNot, Pattern: "error"}, "an error occurred"))
}

func TestCheck_GreaterThanPasses(t *testing.T) {
	t.Parallel()
	require.NoError(t, Check(plan.Expect{Kind: plan.ExpectGreaterThan, Number: 5}, "7"))
}

func TestCheck_GreaterThanFails(t *testing.T) {
	t.Parallel()
	require.Error(t, Check(plan.Expect{Kind: plan.ExpectGreaterThan, Number: 5}, "3"))
}

func TestCheck_LessThanNegativeNumbers(t *testing.T) {
	t.Parallel()

	cases := []string{"-1", "-1.0", "-.01", "-0.01"}
	for _, c := range cases {
		require.NoErrorf(t, Check(plan.Expect{Kind: plan.ExpectLessThan, Number: 0.0}, c), "case %q", c)
	}
}

func TestCheck_NumberParsingStripsUnitsNotSign(t *testing.T) {
	t.Parallel()

	require.NoError(t, Check(plan.Expect{Kind: plan.ExpectGreaterThan, Number: 100}, "142ms"))
	require.NoError(t, Check(plan.Expect{Kind: plan.ExpectLessThan, Number: 0}, "-5 degrees"))
}

func TestCheck_NumberParsingWithThousandsSeparator(t *testing.T) {
	t.Parallel()
	require.NoError(t, Check(plan.Expect{Kind: plan.ExpectGreaterThan, Number: 1000}, "1,500 bytes"))
}

func TestCheck_NoNumberFoundErrors(t *testing.T) {
	t.Parallel()
	require.Error(t, Check(plan.Expect{Kind: plan.ExpectGreaterThan, Number: 5}, "not numeric"))
}

func TestCheck_InvalidRegexErrors(t *testing.T) {
	t.Parallel()
	require.Error(t, Check(plan.Expect{Kind: plan.ExpectMatches, Pattern: "("}, "anything"))
}
