package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-vacancy-parser/internal/clients/hh"
	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/maxaizer/hh-vacancy-parser/internal/events"
	"github.com/maxaizer/hh-vacancy-parser/internal/repositories"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pages        map[int][]hh.RawVacancy
	failingPages map[int]bool
	details      map[string]hh.RawVacancy
	onSearch     func(page int)

	searchCalls []int
	detailCalls []string
}

func (s *fakeSource) SearchVacancies(_ context.Context, parameters hh.SearchParameters) (*hh.SearchPage, error) {
	s.searchCalls = append(s.searchCalls, parameters.Page)
	if s.onSearch != nil {
		s.onSearch(parameters.Page)
	}
	if s.failingPages[parameters.Page] {
		return nil, &hh.HTTPError{StatusCode: 503, Body: "unavailable"}
	}
	items := lo.Map(s.pages[parameters.Page], func(vacancy hh.RawVacancy, _ int) json.RawMessage {
		data, _ := json.Marshal(vacancy)
		return data
	})
	return &hh.SearchPage{Found: 100 + parameters.Page, Items: items}, nil
}

func (s *fakeSource) GetVacancy(_ context.Context, id string) (*hh.RawVacancy, error) {
	s.detailCalls = append(s.detailCalls, id)
	detail, ok := s.details[id]
	if !ok {
		return nil, &hh.HTTPError{StatusCode: 404, Body: "not found"}
	}
	return &detail, nil
}

type panickingVacancies struct {
	panicOn string
	inner   vacancyRepository
}

func (p panickingVacancies) Upsert(ctx context.Context, fields entities.NormalizedVacancy, taskID int) (bool, error) {
	if fields.ExternalID == p.panicOn {
		panic("boom")
	}
	return p.inner.Upsert(ctx, fields, taskID)
}

type testEnv struct {
	tasks     *repositories.Tasks
	vacancies *repositories.Vacancies
	source    *fakeSource
	parser    *Parser
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(filepath.Join(t.TempDir(), "parser.db"), false)
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })

	env := &testEnv{
		tasks:     repositories.NewTasksRepository(dbCtx.DB),
		vacancies: repositories.NewVacanciesRepository(dbCtx.DB),
		source:    &fakeSource{pages: map[int][]hh.RawVacancy{}, failingPages: map[int]bool{}, details: map[string]hh.RawVacancy{}},
	}
	env.parser = NewParser(env.tasks, env.vacancies, nil)
	env.parser.RegisterSource(entities.SourceHH, env.source)
	env.parser.SetPageDelay(0)
	return env
}

func (e *testEnv) addTask(t *testing.T, name string, pages, perPage int, active bool) entities.ParseTask {
	t.Helper()

	task := entities.NewParseTask(name)
	task.Pages = pages
	task.PerPage = perPage
	task.IsActive = active
	require.NoError(t, e.tasks.Add(context.Background(), &task))
	return task
}

func fullRaw(id string) hh.RawVacancy {
	return hh.RawVacancy{
		ID:           id,
		Name:         "Python developer " + id,
		Salary:       &hh.Salary{From: lo.ToPtr(100000), Currency: lo.ToPtr("RUR"), Gross: lo.ToPtr(false)},
		Description:  lo.ToPtr("<p>Backend</p>"),
		KeySkills:    []hh.KeySkill{{Name: "Python"}},
		AlternateURL: "https://hh.ru/vacancy/" + id,
		PublishedAt:  "2024-10-05T18:45:10+0300",
	}
}

func Test_Run_EnrichmentGating(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "gating", 1, 10, true)

	complete := fullRaw("1")
	noSalary := fullRaw("2")
	noSalary.Salary = nil
	noDescription := fullRaw("3")
	noDescription.Description = nil

	env.source.pages[0] = []hh.RawVacancy{complete, noSalary, noDescription}
	env.source.details["2"] = hh.RawVacancy{ID: "2", Salary: &hh.Salary{To: lo.ToPtr(90000)}}
	env.source.details["3"] = hh.RawVacancy{ID: "3", Description: lo.ToPtr("from details")}

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, []string{"2", "3"}, env.source.detailCalls)
	assert.Equal(t, 3, stats.Added)
	assert.Equal(t, 0, stats.Errors)

	enriched, err := env.vacancies.GetByExternalID(context.Background(), "2")
	require.NoError(t, err)
	require.NotNil(t, enriched.SalaryTo)
	assert.Equal(t, 90000, *enriched.SalaryTo)

	described, err := env.vacancies.GetByExternalID(context.Background(), "3")
	require.NoError(t, err)
	require.NotNil(t, described.Description)
	assert.Equal(t, "from details", *described.Description)
}

func Test_Run_FailedDetailKeepsPreview(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "detail failure", 1, 10, true)

	preview := fullRaw("5")
	preview.Salary = nil
	env.source.pages[0] = []hh.RawVacancy{preview}

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, []string{"5"}, env.source.detailCalls)
	assert.Equal(t, 1, stats.Added)

	stored, err := env.vacancies.GetByExternalID(context.Background(), "5")
	require.NoError(t, err)
	assert.Nil(t, stored.SalaryFrom)
	assert.Nil(t, stored.SalaryCurrency)
}

func Test_Run_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "idempotent", 1, 10, true)
	env.source.pages[0] = []hh.RawVacancy{fullRaw("10")}

	first := env.parser.Run(context.Background(), task)
	stored, err := env.vacancies.GetByExternalID(context.Background(), "10")
	require.NoError(t, err)

	second := env.parser.Run(context.Background(), task)
	restored, err := env.vacancies.GetByExternalID(context.Background(), "10")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Added)
	assert.Equal(t, 0, first.Updated)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 1, second.Updated)

	assert.Equal(t, stored.ID, restored.ID)
	assert.Equal(t, stored.Name, restored.Name)
	assert.Equal(t, stored.SalaryFrom, restored.SalaryFrom)
	assert.Equal(t, stored.Skills, restored.Skills)
	assert.True(t, stored.PublishedAt.Equal(restored.PublishedAt))
}

func Test_Run_ReassignsOwnership(t *testing.T) {
	env := newTestEnv(t)
	taskA := env.addTask(t, "A", 1, 10, true)
	taskB := env.addTask(t, "B", 1, 10, true)
	env.source.pages[0] = []hh.RawVacancy{fullRaw("20")}

	env.parser.Run(context.Background(), taskA)
	env.parser.Run(context.Background(), taskB)

	stored, err := env.vacancies.GetByExternalID(context.Background(), "20")
	require.NoError(t, err)
	assert.Equal(t, taskB.ID, stored.ParseTaskID)
}

func Test_Run_IsolatesFailedPage(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "isolation", 3, 1, true)
	env.source.pages[0] = []hh.RawVacancy{fullRaw("30")}
	env.source.pages[1] = []hh.RawVacancy{fullRaw("31")}
	env.source.pages[2] = []hh.RawVacancy{fullRaw("32")}
	env.source.failingPages[1] = true

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, []int{0, 1, 2}, env.source.searchCalls)
	assert.Equal(t, 3, stats.PagesProcessed)
	assert.GreaterOrEqual(t, stats.Errors, 1)
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 102, stats.TotalFound)

	for _, id := range []string{"30", "32"} {
		stored, err := env.vacancies.GetByExternalID(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, stored, id)
	}
	missing, err := env.vacancies.GetByExternalID(context.Background(), "31")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func Test_Run_TwoPagesWithDuplicate(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "scenario", 2, 2, true)

	_, err := env.vacancies.Upsert(context.Background(), hh.Normalize(fullRaw("41"), time.Now()), task.ID)
	require.NoError(t, err)

	env.source.pages[0] = []hh.RawVacancy{fullRaw("40"), fullRaw("41")}
	env.source.pages[1] = []hh.RawVacancy{fullRaw("42")}

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, entities.RunStats{
		TotalFound:     101,
		Parsed:         3,
		Added:          2,
		Updated:        1,
		Errors:         0,
		PagesProcessed: 2,
	}, stats)
}

func Test_Run_SkipsItemWithoutID(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "no id", 1, 10, true)

	noID := fullRaw("")
	noID.Salary = nil
	env.source.pages[0] = []hh.RawVacancy{noID, fullRaw("50")}

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, 2, stats.Parsed)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 0, stats.Errors)
	assert.Empty(t, env.source.detailCalls)
}

func Test_Run_MalformedItemFailsAlone(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "malformed", 1, 10, true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"found": 2, "pages": 1, "items": [
			{"id": "1", "name": "Go developer", "salary": {"from": 100000, "currency": "RUR"},
			 "description": "<p>Backend</p>", "published_at": "2024-10-05T18:45:10+0300"},
			{"id": "2", "name": "Python developer", "salary": "negotiable"}
		]}`))
	}))
	defer server.Close()

	client := hh.NewClient()
	client.SetBaseURL(server.URL)
	env.parser.RegisterSource(entities.SourceHH, client)

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, entities.RunStats{TotalFound: 2, Parsed: 2, Added: 1, Errors: 1, PagesProcessed: 1}, stats)

	good, err := env.vacancies.GetByExternalID(context.Background(), "1")
	require.NoError(t, err)
	assert.NotNil(t, good)

	bad, err := env.vacancies.GetByExternalID(context.Background(), "2")
	require.NoError(t, err)
	assert.Nil(t, bad)
}

func Test_Run_RecoversItemPanic(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "panic", 1, 10, true)
	env.parser.vacancies = panickingVacancies{panicOn: "60", inner: env.vacancies}
	env.source.pages[0] = []hh.RawVacancy{fullRaw("60"), fullRaw("61")}

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, 2, stats.Parsed)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Errors)
}

func Test_Run_SetsLastRunWhenAllPagesFail(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "all failing", 2, 10, true)
	env.source.failingPages[0] = true
	env.source.failingPages[1] = true

	now := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)
	env.parser.now = func() time.Time { return now }

	stats := env.parser.Run(context.Background(), task)
	assert.Equal(t, 2, stats.Errors)
	assert.Equal(t, 2, stats.PagesProcessed)
	assert.Equal(t, 0, stats.Parsed)

	stored, err := env.tasks.GetActiveByID(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastRun)
	assert.True(t, now.Equal(*stored.LastRun))
}

func Test_Run_StopsOnCancellation(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "cancelled", 3, 10, true)
	env.source.pages[0] = []hh.RawVacancy{fullRaw("70")}
	env.parser.SetPageDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	env.source.onSearch = func(int) { cancel() }

	stats := env.parser.Run(ctx, task)

	assert.Equal(t, []int{0}, env.source.searchCalls)
	assert.Equal(t, 1, stats.PagesProcessed)
	assert.Equal(t, 1, stats.Errors)

	stored, err := env.tasks.GetActiveByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastRun)
}

func Test_Run_UnsupportedSource(t *testing.T) {
	env := newTestEnv(t)
	task := entities.NewParseTask("habr")
	task.Source = entities.SourceHabr
	require.NoError(t, env.tasks.Add(context.Background(), &task))

	stats := env.parser.Run(context.Background(), task)

	assert.Equal(t, entities.RunStats{Errors: 1}, stats)
	assert.Empty(t, env.source.searchCalls)

	stored, err := env.tasks.GetActiveByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastRun)
}

func Test_Run_PublishesFinishedEvent(t *testing.T) {
	env := newTestEnv(t)
	bus := EventBus.New()
	env.parser.bus = bus
	task := env.addTask(t, "events", 1, 10, true)
	env.source.pages[0] = []hh.RawVacancy{fullRaw("80")}

	var received []events.TaskRunFinished
	require.NoError(t, bus.Subscribe(events.TaskRunFinishedTopic, func(event events.TaskRunFinished) {
		received = append(received, event)
	}))

	env.parser.Run(context.Background(), task)

	require.Len(t, received, 1)
	assert.Equal(t, task.ID, received[0].Task.ID)
	assert.Equal(t, 1, received[0].Stats.Added)
}

func Test_RunByID_InactiveTask(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "inactive", 1, 10, false)

	_, err := env.parser.RunByID(context.Background(), task.ID)
	assert.True(t, errors.Is(err, ErrTaskNotFound))
	assert.Equal(t, "Task not found or inactive", err.Error())

	_, err = env.parser.RunByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.Empty(t, env.source.searchCalls)
	assert.Empty(t, env.source.detailCalls)
}

func Test_RunByID_ActiveTask(t *testing.T) {
	env := newTestEnv(t)
	task := env.addTask(t, "active", 1, 10, true)
	env.source.pages[0] = []hh.RawVacancy{fullRaw("90")}

	run, err := env.parser.RunByID(context.Background(), task.ID)

	require.NoError(t, err)
	assert.Equal(t, "active", run.Task.Name)
	assert.Equal(t, 1, run.Stats.Added)
	assert.Equal(t, []int{0}, env.source.searchCalls)
}

func Test_RunActive_RunsOnlyActiveTasks(t *testing.T) {
	env := newTestEnv(t)
	first := env.addTask(t, "first", 1, 10, true)
	env.addTask(t, "disabled", 1, 10, false)
	second := env.addTask(t, "second", 1, 10, true)
	env.source.pages[0] = []hh.RawVacancy{fullRaw("100")}

	var finished []string
	runs, err := env.parser.RunActive(context.Background(), func(run TaskRun) {
		finished = append(finished, run.Task.Name)
	})

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].Task.ID)
	assert.Equal(t, second.ID, runs[1].Task.ID)
	assert.Equal(t, 1, runs[0].Stats.Added)
	assert.Equal(t, 1, runs[1].Stats.Updated)
	assert.Equal(t, []string{"first", "second"}, finished)
}

func TestSleep_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}
