package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Read-time legacy normalization. Records written by older application
// versions predate some fields; rather than rewriting stored data, every
// read applies these pure functions so both backends stay behaviorally
// identical. Already-correct values pass through unchanged, which keeps the
// functions idempotent and safe to apply on every read.

// DefaultPeriodCount and DefaultPeriodDuration are the fallbacks applied to
// season and tournament records stored before configurable periods existed.
const (
	DefaultPeriodCount    = 2
	DefaultPeriodDuration = 25
)

// NormalizeSeason fills fields that older season records lack.
func NormalizeSeason(s *Season) *Season {
	if s == nil {
		return nil
	}
	if !s.ClubSeason.IsSet() {
		s.ClubSeason = NullableString(DeriveClubSeason(string(s.StartDate), string(s.EndDate)))
	}
	if s.PeriodCount <= 0 {
		s.PeriodCount = DefaultPeriodCount
	}
	if s.PeriodDuration <= 0 {
		s.PeriodDuration = DefaultPeriodDuration
	}
	return s
}

// NormalizeTournament fills fields that older tournament records lack and
// migrates the legacy single-value level into the series array. The legacy
// conversion is deterministic (the series id is derived from the level) so
// repeated reads of the same record agree.
func NormalizeTournament(t *Tournament) *Tournament {
	if t == nil {
		return nil
	}
	if !t.ClubSeason.IsSet() {
		t.ClubSeason = NullableString(DeriveClubSeason(string(t.StartDate), string(t.EndDate)))
	}
	if t.PeriodCount <= 0 {
		t.PeriodCount = DefaultPeriodCount
	}
	if t.PeriodDuration <= 0 {
		t.PeriodDuration = DefaultPeriodDuration
	}
	if len(t.Series) == 0 {
		t.Series = SeriesList{}
		if t.Level.IsSet() {
			t.Series = append(t.Series, TournamentSeries{
				ID:    legacySeriesID(string(t.Level)),
				Level: string(t.Level),
			})
		}
	}
	return t
}

func legacySeriesID(level string) string {
	return "level-" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(level), " ", "-"))
}

// DeriveClubSeason computes the "2025/26" style club-season label from a
// record's date range. Both dates in the same calendar year yield the bare
// year. Returns "" when the start date is missing or unparseable, so the
// caller stores nothing rather than a wrong guess.
func DeriveClubSeason(startDate, endDate string) string {
	startYear, ok := dateYear(startDate)
	if !ok {
		return ""
	}
	endYear, ok := dateYear(endDate)
	if !ok || endYear == startYear {
		return strconv.Itoa(startYear)
	}
	return fmt.Sprintf("%d/%02d", startYear, endYear%100)
}

func dateYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1900 {
		return 0, false
	}
	return year, true
}
