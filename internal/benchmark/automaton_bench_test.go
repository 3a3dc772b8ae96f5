package benchmark

import (
	"strings"
	"testing"

	"nfamatch/internal/automaton"
	"nfamatch/internal/syntax"
	"nfamatch/internal/testutil"
	"nfamatch/pkg/regex"
)

func BenchmarkParse_Short(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = syntax.Parse("a(b|c)*d")
	}
}

func BenchmarkParse_Long(b *testing.B) {
	pattern := strings.Repeat("(ab|cd)*e?", 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = syntax.Parse(pattern)
	}
}

func BenchmarkCompile_Short(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = regex.Compile("a(b|c)*d")
	}
}

func BenchmarkCompile_Pathological(b *testing.B) {
	pattern, _ := testutil.PathologicalPattern(30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = regex.Compile(pattern)
	}
}

func BenchmarkMatch_Literal(b *testing.B) {
	re := regex.MustCompile("internationalization")
	text := "internationalization"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		re.MatchString(text)
	}
}

func BenchmarkMatch_Wildcard(b *testing.B) {
	re := regex.MustCompile("h.*o")
	text := "h" + strings.Repeat("ell", 100) + "o"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		re.MatchString(text)
	}
}

func BenchmarkMatch_Pathological_N10(b *testing.B) {
	benchmarkPathological(b, 10)
}

func BenchmarkMatch_Pathological_N30(b *testing.B) {
	benchmarkPathological(b, 30)
}

func BenchmarkMatch_Pathological_N100(b *testing.B) {
	benchmarkPathological(b, 100)
}

func benchmarkPathological(b *testing.B, n int) {
	pattern, text := testutil.PathologicalPattern(n)
	re := regex.MustCompile(pattern)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !re.MatchString(text) {
			b.Fatal("expected match")
		}
	}
}

func BenchmarkMatch_NestedStar(b *testing.B) {
	re := regex.MustCompile(testutil.NestedStarPattern())
	text := strings.Repeat("a", 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if re.MatchString(text) {
			b.Fatal("unexpected match")
		}
	}
}

func BenchmarkFindAll(b *testing.B) {
	re := regex.MustCompile("o+")
	text := strings.Repeat("foo boooo o ", 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		re.FindAllStringIndex(text, -1)
	}
}

func BenchmarkDeterminize(b *testing.B) {
	re := regex.MustCompile("(a|b)*a(a|b)(a|b)(a|b)")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = automaton.Determinize(re.NFA(), 0)
	}
}

func BenchmarkDFA_Run(b *testing.B) {
	re := regex.MustCompile(testutil.NestedStarPattern())
	dfa, err := automaton.Determinize(re.NFA(), 0)
	if err != nil {
		b.Fatal(err)
	}
	text := strings.Repeat("a", 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		automaton.Run(dfa, text)
	}
}
