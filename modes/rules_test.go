package modes

import "testing"

func TestEvaluateRowSignSemantics(t *testing.T) {
	cases := []struct {
		name string
		row  []Predicate
		msg  [5]int
		prev [5]int
		want int
	}{
		{"all equal match", []Predicate{Equal(0x90), Equal(60)}, [5]int{0x90, 60}, [5]int{}, 1},
		{"equal fails", []Predicate{Equal(0x90)}, [5]int{0x80}, [5]int{}, 0},
		{"match previous", []Predicate{MatchPrevious{}}, [5]int{60}, [5]int{60}, 1},
		{"match previous fails", []Predicate{MatchPrevious{}}, [5]int{61}, [5]int{60}, 0},
		{"rotate flips sign", []Predicate{Equal(0x80), AtLeastOrRotate(1)}, [5]int{0x80, 5}, [5]int{}, -1},
		{"wildcard always matches", []Predicate{Wildcard{}}, [5]int{99}, [5]int{}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := EvaluateRow(c.row, c.msg, c.prev); got != c.want {
				t.Errorf("EvaluateRow() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestPredicateEncodeDecodeRoundTrip(t *testing.T) {
	predicates := []Predicate{Equal(144), AtLeastOrRotate(128), MatchPrevious{}, Wildcard{}}
	for _, p := range predicates {
		token := EncodePredicate(p)
		decoded, err := DecodePredicate(token)
		if err != nil {
			t.Fatalf("DecodePredicate(%q): %v", token, err)
		}
		if EncodePredicate(decoded) != token {
			t.Errorf("round trip for %T: token %q -> %q", p, token, EncodePredicate(decoded))
		}
	}
}

func TestDecodePredicateRejectsGarbage(t *testing.T) {
	if _, err := DecodePredicate("nonsense:1"); err == nil {
		t.Error("DecodePredicate should reject an unrecognized token")
	}
}
