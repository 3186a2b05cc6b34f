package models

// Partial-update payloads. A nil field means "leave unchanged"; a pointer to
// the zero value means "clear". Apply mutates the target in place so every
// backend shares one merge implementation.

// PlayerUpdate patches mutable player fields.
type PlayerUpdate struct {
	Name                 *string
	Nickname             *string
	JerseyNumber         *string
	Notes                *string
	IsGoalie             *bool
	ReceivedFairPlayCard *bool
}

// Apply merges the patch into p.
func (u PlayerUpdate) Apply(p *Player) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Nickname != nil {
		p.Nickname = NullableString(*u.Nickname)
	}
	if u.JerseyNumber != nil {
		p.JerseyNumber = NullableString(*u.JerseyNumber)
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	if u.IsGoalie != nil {
		p.IsGoalie = *u.IsGoalie
	}
	if u.ReceivedFairPlayCard != nil {
		p.ReceivedFairPlayCard = *u.ReceivedFairPlayCard
	}
}

// TeamUpdate patches mutable team fields. Season and tournament bindings are
// cleared by passing a pointer to the zero ID.
type TeamUpdate struct {
	Name               *string
	SeasonID           *SeasonID
	TournamentID       *TournamentID
	TournamentSeriesID *string
	GameType           *string
	Color              *string
}

// Apply merges the patch into t.
func (u TeamUpdate) Apply(t *Team) {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.SeasonID != nil {
		t.SeasonID = *u.SeasonID
	}
	if u.TournamentID != nil {
		t.TournamentID = *u.TournamentID
	}
	if u.TournamentSeriesID != nil {
		t.TournamentSeriesID = NullableString(*u.TournamentSeriesID)
	}
	if u.GameType != nil {
		t.GameType = NullableString(*u.GameType)
	}
	if u.Color != nil {
		t.Color = NullableString(*u.Color)
	}
}

// SeasonUpdate patches mutable season fields.
type SeasonUpdate struct {
	Name           *string
	Location       *string
	StartDate      *string
	EndDate        *string
	AgeGroup       *string
	ClubSeason     *string
	PeriodCount    *int
	PeriodDuration *int
	Archived       *bool
	Notes          *string
}

// Apply merges the patch into s.
func (u SeasonUpdate) Apply(s *Season) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Location != nil {
		s.Location = NullableString(*u.Location)
	}
	if u.StartDate != nil {
		s.StartDate = NullableString(*u.StartDate)
	}
	if u.EndDate != nil {
		s.EndDate = NullableString(*u.EndDate)
	}
	if u.AgeGroup != nil {
		s.AgeGroup = NullableString(*u.AgeGroup)
	}
	if u.ClubSeason != nil {
		s.ClubSeason = NullableString(*u.ClubSeason)
	}
	if u.PeriodCount != nil {
		s.PeriodCount = *u.PeriodCount
	}
	if u.PeriodDuration != nil {
		s.PeriodDuration = *u.PeriodDuration
	}
	if u.Archived != nil {
		s.Archived = *u.Archived
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
}

// TournamentUpdate patches mutable tournament fields.
type TournamentUpdate struct {
	Name           *string
	StartDate      *string
	EndDate        *string
	Location       *string
	AgeGroup       *string
	Series         *[]TournamentSeries
	PeriodCount    *int
	PeriodDuration *int
	Archived       *bool
	Notes          *string
}

// Apply merges the patch into t.
func (u TournamentUpdate) Apply(t *Tournament) {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.StartDate != nil {
		t.StartDate = NullableString(*u.StartDate)
	}
	if u.EndDate != nil {
		t.EndDate = NullableString(*u.EndDate)
	}
	if u.Location != nil {
		t.Location = NullableString(*u.Location)
	}
	if u.AgeGroup != nil {
		t.AgeGroup = NullableString(*u.AgeGroup)
	}
	if u.Series != nil {
		t.Series = SeriesList(*u.Series)
	}
	if u.PeriodCount != nil {
		t.PeriodCount = *u.PeriodCount
	}
	if u.PeriodDuration != nil {
		t.PeriodDuration = *u.PeriodDuration
	}
	if u.Archived != nil {
		t.Archived = *u.Archived
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
}

// PersonnelUpdate patches mutable personnel fields.
type PersonnelUpdate struct {
	Name  *string
	Role  *PersonnelRole
	Phone *string
	Email *string
	Notes *string
}

// Apply merges the patch into p.
func (u PersonnelUpdate) Apply(p *Personnel) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.Phone != nil {
		p.Phone = NullableString(*u.Phone)
	}
	if u.Email != nil {
		p.Email = NullableString(*u.Email)
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
}
