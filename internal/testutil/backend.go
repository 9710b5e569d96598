package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/xpost-dev/xpost/internal/api"
)

// Request is one call recorded by FakeBackend.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

type failure struct {
	status int
	detail string
}

type ctxKey struct{}

// FakeBackend is an in-memory stand-in for the xpost backend, served over
// httptest. Users log in with any password; tokens are HS256 JWTs whose
// subject is the username.
type FakeBackend struct {
	Server *httptest.Server
	Secret []byte

	mu            sync.Mutex
	nextID        int
	users         map[string]*api.User
	tweets        map[int]*api.Tweet
	campaigns     map[int]*api.Campaign
	metrics       map[int][]api.Metric
	summary       *api.AnalyticsSummary
	trends        *api.EngagementTrends
	failures      map[string]failure
	variantScores []float64
	omitLoginUser bool
	tokenTTL      time.Duration
	requests      []Request
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		Secret:        []byte("fake-backend-secret"),
		nextID:        1,
		users:         make(map[string]*api.User),
		tweets:        make(map[int]*api.Tweet),
		campaigns:     make(map[int]*api.Campaign),
		metrics:       make(map[int][]api.Metric),
		failures:      make(map[string]failure),
		variantScores: []float64{0.42, 0.42, 0.42, 0.42, 0.42},
		tokenTTL:      time.Hour,
	}
	fb.Server = httptest.NewServer(fb.routes())
	t.Cleanup(fb.Server.Close)

	return fb
}

// URL is the base address to hand to api.NewClient.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

func (fb *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(fb.record)
	r.Use(fb.injectFailures)

	r.Post("/auth/register", fb.register)
	r.Post("/auth/login", fb.login)

	r.Route("/api", func(r chi.Router) {
		r.Use(fb.authenticate)

		r.Get("/tweets/", fb.listTweets)
		r.Post("/tweets/", fb.createTweet)
		r.Get("/tweets/{id}", fb.getTweet)
		r.Post("/tweets/{id}/post", fb.postTweet)

		r.Post("/ai/generate", fb.generate)
		r.Post("/ai/analyze", fb.analyze)

		r.Get("/analytics/summary", fb.getSummary)
		r.Get("/analytics/tweets/{id}/metrics", fb.getMetrics)
		r.Get("/analytics/engagement-trends", fb.getTrends)

		r.Get("/campaigns/", fb.listCampaigns)
		r.Post("/campaigns/", fb.createCampaign)
		r.Get("/campaigns/{id}", fb.getCampaign)
		r.Put("/campaigns/{id}", fb.updateCampaign)
		r.Delete("/campaigns/{id}", fb.deleteCampaign)
		r.Post("/campaigns/{id}/toggle", fb.toggleCampaign)
	})

	return r
}

// ============================================================================
// Setup and inspection
// ============================================================================

// AddUser registers a user directly.
func (fb *FakeBackend) AddUser(username, twitterUsername string) *api.User {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.addUserLocked(username, twitterUsername)
}

func (fb *FakeBackend) addUserLocked(username, twitterUsername string) *api.User {
	u := &api.User{
		ID:              fb.nextID,
		Username:        username,
		TwitterUsername: twitterUsername,
		CreatedAt:       api.NewTime(time.Now().UTC()),
	}
	fb.nextID++
	fb.users[username] = u
	return u
}

// AddTweet stores a post for username and returns it with its id.
func (fb *FakeBackend) AddTweet(username string, t api.Tweet) api.Tweet {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	t.ID = fb.nextID
	fb.nextID++
	if u, ok := fb.users[username]; ok {
		t.UserID = u.ID
	}
	if t.Status == "" {
		t.Status = api.StatusDraft
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = api.Time{Time: time.Now().UTC()}
	}
	if t.MediaLinks == nil {
		t.MediaLinks = []string{}
	}
	fb.tweets[t.ID] = &t
	return t
}

// AddCampaign stores a campaign for username and returns it with its id.
func (fb *FakeBackend) AddCampaign(username string, c api.Campaign) api.Campaign {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	c.ID = fb.nextID
	fb.nextID++
	if u, ok := fb.users[username]; ok {
		c.UserID = u.ID
	}
	if c.Slots == nil {
		c.Slots = []map[string]any{}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = api.Time{Time: time.Now().UTC()}
	}
	fb.campaigns[c.ID] = &c
	return c
}

// SetMetrics sets the history served for a post.
func (fb *FakeBackend) SetMetrics(tweetID int, metrics []api.Metric) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.metrics[tweetID] = metrics
}

// SetSummary overrides the computed analytics summary.
func (fb *FakeBackend) SetSummary(s api.AnalyticsSummary) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.summary = &s
}

// SetTrends sets the engagement trend series.
func (fb *FakeBackend) SetTrends(tr api.EngagementTrends) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.trends = &tr
}

// SetVariantScores sets the viral scores given to generated variants, in order.
func (fb *FakeBackend) SetVariantScores(scores ...float64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.variantScores = scores
}

// OmitLoginUser makes login return only the token, like older backends.
func (fb *FakeBackend) OmitLoginUser() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.omitLoginUser = true
}

// Fail makes method+path answer with status until cleared with status 0.
func (fb *FakeBackend) Fail(method, path string, status int, detail string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(fb.failures, key)
		return
	}
	fb.failures[key] = failure{status: status, detail: detail}
}

// Token signs a credential for username that expires after ttl.
// A negative ttl yields an already expired token.
func (fb *FakeBackend) Token(username string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fb.Secret)
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	return signed
}

// Campaign returns the stored campaign with id.
func (fb *FakeBackend) Campaign(id int) (api.Campaign, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	c, ok := fb.campaigns[id]
	if !ok {
		return api.Campaign{}, false
	}
	return *c, true
}

// Tweet returns the stored post with id.
func (fb *FakeBackend) Tweet(id int) (api.Tweet, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	t, ok := fb.tweets[id]
	if !ok {
		return api.Tweet{}, false
	}
	return *t, true
}

// TweetCount returns how many posts are stored.
func (fb *FakeBackend) TweetCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.tweets)
}

// Requests returns a copy of every recorded request.
func (fb *FakeBackend) Requests() []Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]Request, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// Count returns how many requests hit method+path.
func (fb *FakeBackend) Count(method, path string) int {
	n := 0
	for _, r := range fb.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request, if any.
func (fb *FakeBackend) LastRequest() (Request, bool) {
	reqs := fb.Requests()
	if len(reqs) == 0 {
		return Request{}, false
	}
	return reqs[len(reqs)-1], true
}

// ============================================================================
// Middleware
// ============================================================================

func (fb *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.requests = append(fb.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		f, ok := fb.failures[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()
		if ok {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
			}
			return fb.Secret, nil
		})
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		fb.mu.Lock()
		user, ok := fb.users[claims.Subject]
		fb.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, *user)))
	})
}

func currentUser(r *http.Request) api.User {
	u, _ := r.Context().Value(ctxKey{}).(api.User)
	return u
}

// ============================================================================
// Auth
// ============================================================================

func (fb *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"query", "username"}, "msg": "field required"}},
		})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, exists := fb.users[username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	u := fb.addUserLocked(username, r.URL.Query().Get("twitter_username"))
	writeJSON(w, http.StatusOK, u)
}

func (fb *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	fb.mu.Lock()
	user, ok := fb.users[creds.Username]
	omitUser := fb.omitLoginUser
	ttl := fb.tokenTTL
	fb.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	resp := api.Token{AccessToken: fb.Token(user.Username, ttl), TokenType: "bearer"}
	if !omitUser {
		u := *user
		resp.User = &u
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Tweets
// ============================================================================

func (fb *FakeBackend) ownedTweet(w http.ResponseWriter, r *http.Request) (*api.Tweet, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return nil, false
	}
	t, ok := fb.tweets[id]
	if !ok || t.UserID != currentUser(r).ID {
		writeDetail(w, http.StatusNotFound, "Tweet not found")
		return nil, false
	}
	return t, true
}

func (fb *FakeBackend) listTweets(w http.ResponseWriter, r *http.Request) {
	limit := api.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	status := r.URL.Query().Get("status")
	user := currentUser(r)

	fb.mu.Lock()
	defer fb.mu.Unlock()

	out := []api.Tweet{}
	for _, t := range fb.tweets {
		if t.UserID != user.ID || (status != "" && t.Status != status) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) getTweet(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if t, ok := fb.ownedTweet(w, r); ok {
		writeJSON(w, http.StatusOK, t)
	}
}

func (fb *FakeBackend) createTweet(w http.ResponseWriter, r *http.Request) {
	var in api.TweetCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if n := utf8.RuneCountInString(in.Text); n == 0 || n > 280 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "text"}, "msg": "ensure this value has at most 280 characters"}},
		})
		return
	}

	user := currentUser(r)
	fb.mu.Lock()
	defer fb.mu.Unlock()

	t := &api.Tweet{
		ID:          fb.nextID,
		UserID:      user.ID,
		Text:        in.Text,
		Status:      api.StatusDraft,
		CreatedAt:   api.Time{Time: time.Now().UTC()},
		ScheduledAt: in.ScheduledAt,
		MediaLinks:  in.MediaLinks,
	}
	if t.MediaLinks == nil {
		t.MediaLinks = []string{}
	}
	if in.ScheduledAt != nil {
		t.Status = api.StatusScheduled
	}
	fb.nextID++
	fb.tweets[t.ID] = t
	writeJSON(w, http.StatusCreated, t)
}

func (fb *FakeBackend) postTweet(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	t, ok := fb.ownedTweet(w, r)
	if !ok {
		return
	}
	if t.Status == api.StatusPosted {
		writeDetail(w, http.StatusBadRequest, "Tweet already posted")
		return
	}
	t.Status = api.StatusPosted
	t.PostedAt = api.NewTime(time.Now().UTC())
	t.TweetIDTwitter = strconv.Itoa(1000000 + t.ID)
	writeJSON(w, http.StatusOK, t)
}

// ============================================================================
// AI
// ============================================================================

func (fb *FakeBackend) generate(w http.ResponseWriter, r *http.Request) {
	var in api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if in.NumVariants < 1 || in.NumVariants > 5 {
		writeDetail(w, http.StatusUnprocessableEntity, "num_variants must be between 1 and 5")
		return
	}

	user := currentUser(r)
	fb.mu.Lock()
	defer fb.mu.Unlock()

	resp := api.GenerateResponse{
		Variants: make([]api.GeneratedVariant, 0, in.NumVariants),
		Metadata: map[string]any{"topic": in.Topic, "tone": in.Tone},
	}
	for i := 0; i < in.NumVariants; i++ {
		score := 0.5
		if i < len(fb.variantScores) {
			score = fb.variantScores[i]
		}
		text := fmt.Sprintf("%s (%s take #%d)", in.Topic, in.Tone, i+1)
		if in.IncludeHashtags {
			text += " #xpost"
		}
		resp.Variants = append(resp.Variants, api.GeneratedVariant{Text: text, ViralScore: score})

		s := score
		fb.tweets[fb.nextID] = &api.Tweet{
			ID:            fb.nextID,
			UserID:        user.ID,
			Text:          text,
			Status:        api.StatusDraft,
			CreatedAt:     api.Time{Time: time.Now().UTC()},
			MediaLinks:    []string{},
			GeneratedByAI: true,
			ViralScore:    &s,
		}
		fb.nextID++
	}
	writeJSON(w, http.StatusOK, resp)
}

func (fb *FakeBackend) analyze(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "text is required")
		return
	}
	sentiment := "neutral"
	if strings.Contains(text, "!") {
		sentiment = "positive"
	}
	writeJSON(w, http.StatusOK, api.Analysis{
		Sentiment:       sentiment,
		EngagementScore: 0.65,
		Suggestions:     []string{"Add a question to invite replies"},
	})
}

// ============================================================================
// Analytics
// ============================================================================

func (fb *FakeBackend) getSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.summary != nil {
		writeJSON(w, http.StatusOK, fb.summary)
		return
	}
	total := 0
	for _, t := range fb.tweets {
		if t.UserID == user.ID {
			total++
		}
	}
	writeJSON(w, http.StatusOK, api.AnalyticsSummary{
		TotalTweets:   total,
		BestTimeSlots: []api.TimeSlot{},
	})
}

func (fb *FakeBackend) getMetrics(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	t, ok := fb.ownedTweet(w, r)
	if !ok {
		return
	}
	metrics := fb.metrics[t.ID]
	if metrics == nil {
		metrics = []api.Metric{}
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (fb *FakeBackend) getTrends(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.trends != nil {
		writeJSON(w, http.StatusOK, fb.trends)
		return
	}
	writeJSON(w, http.StatusOK, api.EngagementTrends{Data: []api.TrendPoint{}})
}

// ============================================================================
// Campaigns
// ============================================================================

func (fb *FakeBackend) ownedCampaign(w http.ResponseWriter, r *http.Request) (*api.Campaign, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return nil, false
	}
	c, ok := fb.campaigns[id]
	if !ok || c.UserID != currentUser(r).ID {
		writeDetail(w, http.StatusNotFound, "Campaign not found")
		return nil, false
	}
	return c, true
}

func (fb *FakeBackend) listCampaigns(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	fb.mu.Lock()
	defer fb.mu.Unlock()

	out := []api.Campaign{}
	for _, c := range fb.campaigns {
		if c.UserID == user.ID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) getCampaign(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if c, ok := fb.ownedCampaign(w, r); ok {
		writeJSON(w, http.StatusOK, c)
	}
}

func (fb *FakeBackend) createCampaign(w http.ResponseWriter, r *http.Request) {
	var in api.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	user := currentUser(r)
	fb.mu.Lock()
	defer fb.mu.Unlock()

	c := &api.Campaign{
		ID:          fb.nextID,
		UserID:      user.ID,
		Name:        in.Name,
		Description: in.Description,
		Recurrence:  in.Recurrence,
		Active:      true,
		Slots:       in.Slots,
		CreatedAt:   api.Time{Time: time.Now().UTC()},
	}
	if c.Slots == nil {
		c.Slots = []map[string]any{}
	}
	fb.nextID++
	fb.campaigns[c.ID] = c
	writeJSON(w, http.StatusCreated, c)
}

func (fb *FakeBackend) updateCampaign(w http.ResponseWriter, r *http.Request) {
	var in api.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	c, ok := fb.ownedCampaign(w, r)
	if !ok {
		return
	}
	if in.Name != "" {
		c.Name = in.Name
	}
	c.Description = in.Description
	c.Recurrence = in.Recurrence
	if in.Slots != nil {
		c.Slots = in.Slots
	}
	writeJSON(w, http.StatusOK, c)
}

func (fb *FakeBackend) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	c, ok := fb.ownedCampaign(w, r)
	if !ok {
		return
	}
	delete(fb.campaigns, c.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (fb *FakeBackend) toggleCampaign(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	c, ok := fb.ownedCampaign(w, r)
	if !ok {
		return
	}
	c.Active = !c.Active
	writeJSON(w, http.StatusOK, c)
}

// ============================================================================
// Helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
