package models

import "testing"

func TestDeriveClubSeason(t *testing.T) {
	cases := []struct {
		start, end, want string
	}{
		{"2024-08-01", "2025-05-31", "2024/25"},
		{"2025-03-01", "2025-06-30", "2025"},
		{"2025-03-01", "", "2025"},
		{"", "2025-06-30", ""},
		{"bogus", "2025-06-30", ""},
		{"1999-08-01", "2000-05-31", "1999/00"},
	}
	for _, c := range cases {
		if got := DeriveClubSeason(c.start, c.end); got != c.want {
			t.Errorf("DeriveClubSeason(%q, %q) = %q, want %q", c.start, c.end, got, c.want)
		}
	}
}

func TestNormalizeSeasonDerivesClubSeason(t *testing.T) {
	s := &Season{Name: "U11 Spring", StartDate: "2024-08-01", EndDate: "2025-05-31"}
	NormalizeSeason(s)
	if s.ClubSeason != "2024/25" {
		t.Errorf("ClubSeason = %q, want 2024/25", s.ClubSeason)
	}
	if s.PeriodCount != DefaultPeriodCount || s.PeriodDuration != DefaultPeriodDuration {
		t.Errorf("period defaults not applied: %d/%d", s.PeriodCount, s.PeriodDuration)
	}

	// A stored value is never overwritten.
	s2 := &Season{Name: "x", StartDate: "2024-08-01", EndDate: "2025-05-31", ClubSeason: "2023/24"}
	NormalizeSeason(s2)
	if s2.ClubSeason != "2023/24" {
		t.Errorf("stored ClubSeason overwritten: %q", s2.ClubSeason)
	}
}

func TestNormalizeTournamentLegacyLevel(t *testing.T) {
	tr := &Tournament{Name: "Spring Cup", Level: "Elite A"}
	NormalizeTournament(tr)
	if len(tr.Series) != 1 {
		t.Fatalf("Series length = %d, want 1", len(tr.Series))
	}
	if tr.Series[0].Level != "Elite A" || tr.Series[0].ID != "level-elite-a" {
		t.Errorf("unexpected series entry: %+v", tr.Series[0])
	}

	// Idempotent: normalizing again must not duplicate the entry.
	NormalizeTournament(tr)
	if len(tr.Series) != 1 {
		t.Errorf("second normalization duplicated series: %d entries", len(tr.Series))
	}

	// An existing array wins over the legacy scalar.
	tr2 := &Tournament{
		Name:   "Winter Cup",
		Level:  "B",
		Series: SeriesList{{ID: "s1", Level: "A"}},
	}
	NormalizeTournament(tr2)
	if len(tr2.Series) != 1 || tr2.Series[0].ID != "s1" {
		t.Errorf("existing series rewritten: %+v", tr2.Series)
	}
}

func TestNormalizeTournamentNoLevel(t *testing.T) {
	tr := &Tournament{Name: "Friendly"}
	NormalizeTournament(tr)
	if tr.Series == nil {
		t.Fatal("Series must be empty, not nil, after normalization")
	}
	if len(tr.Series) != 0 {
		t.Errorf("Series length = %d, want 0", len(tr.Series))
	}
}
