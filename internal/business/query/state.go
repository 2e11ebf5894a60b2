package query

import "github.com/pgstay/api/pkg/model"

// State is the browse configuration a student edits: criteria, sort mode and
// requested page. Editing criteria or the sort mode moves back to page 1, so a
// re-sort never leaves the viewer stranded on a partial or empty page.
type State struct {
	criteria Criteria
	sort     SortMode
	page     int
}

// NewState returns the default browse configuration.
func NewState() *State {
	return &State{criteria: DefaultCriteria(), sort: SortRecommended, page: 1}
}

func (s *State) Criteria() Criteria { return s.criteria }
func (s *State) Sort() SortMode     { return s.sort }
func (s *State) Page() int          { return s.page }

// SetCriteria replaces the filters and resets to page 1 when they changed.
func (s *State) SetCriteria(c Criteria) {
	if s.criteria.Equal(c) {
		return
	}
	s.criteria = c
	s.page = 1
}

// SetSort changes the sort mode and resets to page 1 when it changed.
// Unrecognized modes become SortRecommended.
func (s *State) SetSort(mode SortMode) {
	mode = ParseSortMode(string(mode))
	if mode == s.sort {
		return
	}
	s.sort = mode
	s.page = 1
}

// SetPage records the requested page. Out-of-range values are clamped when the
// query runs, since the valid range depends on the result count.
func (s *State) SetPage(page int) {
	s.page = page
}

// Reset restores default criteria, sort mode and page.
func (s *State) Reset() {
	*s = *NewState()
}

// Run executes the query for the current state and stores the clamped page.
func (s *State) Run(listings []model.Listing) Result {
	res := Query(listings, s.criteria, s.sort, s.page)
	s.page = res.Page
	return res
}
