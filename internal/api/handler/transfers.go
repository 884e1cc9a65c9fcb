package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-transfers/internal/api/respond"
	"github.com/albapepper/scoracle-transfers/internal/cache"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/db"
	"github.com/albapepper/scoracle-transfers/internal/provider"
	"github.com/albapepper/scoracle-transfers/internal/provider/transfermarkt"
)

// LeagueInfo is one registry entry as served by the API.
type LeagueInfo struct {
	Slug string `json:"slug"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// GetLeagues lists the supported leagues.
// @Summary List leagues
// @Description Returns every league the scraper supports.
// @Tags leagues
// @Produce json
// @Success 200 {array} LeagueInfo
// @Router /leagues [get]
func (h *Handler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	slugs := config.LeagueSlugs()
	leagues := make([]LeagueInfo, 0, len(slugs))
	for _, slug := range slugs {
		l := config.LeagueRegistry[slug]
		leagues = append(leagues, LeagueInfo{Slug: l.Slug, Code: l.Code, Name: l.Name})
	}
	respond.WriteJSONObject(w, http.StatusOK, leagues)
}

// GetLeagueSeasons lists the seasons stored for a league.
// @Summary List stored seasons
// @Description Returns the seasons with stored transfers for a league, ascending.
// @Tags leagues
// @Produce json
// @Param league path string true "League slug" example(premier-league)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /leagues/{league}/seasons [get]
func (h *Handler) GetLeagueSeasons(w http.ResponseWriter, r *http.Request) {
	league, ok := h.league(w, r)
	if !ok {
		return
	}

	var seasons []int
	if err := h.pool.QueryRow(r.Context(), db.StmtLeagueSeasons, league.Code).Scan(&seasons); err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "QUERY_FAILED", "Could not load seasons", err.Error())
		return
	}
	if seasons == nil {
		seasons = []int{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"league":  league.Slug,
		"seasons": seasons,
	})
}

// GetTransfers returns the stored transfers of one league season.
// @Summary Get transfers
// @Description Returns the transfers of a league season ordered by club, movement and window. Optional filters narrow by window, club or movement.
// @Tags transfers
// @Produce json
// @Param league path string true "League slug" example(premier-league)
// @Param season path int true "Season start year" example(2024)
// @Param window query string false "Transfer window" Enums(summer, winter)
// @Param club query string false "Exact club name"
// @Param movement query string false "Direction" Enums(in, out)
// @Success 200 {array} provider.Transfer
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /transfers/{league}/{season} [get]
func (h *Handler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	league, season, ok := h.leagueSeason(w, r)
	if !ok {
		return
	}
	window, ok := windowFilter(w, r)
	if !ok {
		return
	}
	movement := r.URL.Query().Get("movement")
	if movement != "" && movement != provider.MovementIn && movement != provider.MovementOut {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_MOVEMENT", "movement must be 'in' or 'out'")
		return
	}
	club := r.URL.Query().Get("club")

	key := cache.TransfersKey(league.Code, season, "list", window, club, movement)
	h.serveCached(w, r, key, h.ttl(season), db.StmtTransfers,
		league.Code, season, nilEmpty(window), nilEmpty(club), nilEmpty(movement))
}

// GetClubSummaries returns per-club spend and income for a league season.
// @Summary Get club summaries
// @Description Returns per-club fee totals (spend, income, net spend) and arrival, departure and loan counts, ordered by net spend.
// @Tags transfers
// @Produce json
// @Param league path string true "League slug" example(premier-league)
// @Param season path int true "Season start year" example(2024)
// @Param window query string false "Transfer window" Enums(summer, winter)
// @Success 200 {array} map[string]interface{}
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /transfers/{league}/{season}/clubs [get]
func (h *Handler) GetClubSummaries(w http.ResponseWriter, r *http.Request) {
	league, season, ok := h.leagueSeason(w, r)
	if !ok {
		return
	}
	window, ok := windowFilter(w, r)
	if !ok {
		return
	}

	key := cache.TransfersKey(league.Code, season, "clubs", window)
	h.serveCached(w, r, key, h.ttl(season), db.StmtClubSummaries,
		league.Code, season, nilEmpty(window))
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// serveCached answers from the cache or runs stmt, caching its JSON.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, stmt string, args ...any) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	var raw []byte
	err := h.pool.QueryRow(r.Context(), stmt, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && raw == nil) {
		raw = []byte("[]")
	} else if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "QUERY_FAILED", "Could not load transfers", err.Error())
		return
	}

	etag := h.cache.Set(key, raw, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, raw, etag, ttl, false)
}

func (h *Handler) league(w http.ResponseWriter, r *http.Request) (config.League, bool) {
	league, err := config.LookupLeague(chi.URLParam(r, "league"))
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusNotFound, "UNKNOWN_LEAGUE", "League not supported", err.Error())
		return config.League{}, false
	}
	return league, true
}

func (h *Handler) leagueSeason(w http.ResponseWriter, r *http.Request) (config.League, int, bool) {
	league, ok := h.league(w, r)
	if !ok {
		return config.League{}, 0, false
	}
	season, err := transfermarkt.ParseSeason(chi.URLParam(r, "season"))
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SEASON", "Season must be a year from 1992", err.Error())
		return config.League{}, 0, false
	}
	return league, season, true
}

// windowFilter returns the window name, or "" when no filter was given.
func windowFilter(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return "", true
	}
	window, err := transfermarkt.ParseWindow(raw)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_WINDOW", "window must be 'summer' or 'winter'", err.Error())
		return "", false
	}
	return window.Name(), true
}

// ttl keeps the season still being refreshed fresher than closed seasons.
func (h *Handler) ttl(season int) time.Duration {
	if season >= config.CurrentSeason(h.now()) {
		return cache.TTLCurrentSeason
	}
	return cache.TTLHistorical
}

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
