package services

import (
	"context"
	"sort"
	"time"

	"wanderlog/internal/models"
	"wanderlog/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPeriodDays = 30
	MaxPeriodDays     = 365

	dashboardTopPosts   = 5
	topAuthors          = 10
	topTags             = 20
	recentUsers         = 10
	recentActivityLimit = 10
)

// DailyCount is the number of records created on one calendar day.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD in the service's time zone
	Count int64  `json:"count"`
}

// TopBlog is a compact view of a highly viewed blog.
type TopBlog struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Category    models.Category `json:"category"`
	Views       int64           `json:"views"`
	Likes       int64           `json:"likes"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
}

// DashboardOverview holds the headline counters of the dashboard.
type DashboardOverview struct {
	TotalBlogs     int64 `json:"totalBlogs"`
	PublishedBlogs int64 `json:"publishedBlogs"`
	DraftBlogs     int64 `json:"draftBlogs"`
	TotalUsers     int64 `json:"totalUsers"`
	RecentBlogs    int64 `json:"recentBlogs"` // trailing 7 days
	RecentUsers    int64 `json:"recentUsers"` // trailing 7 days
	TotalViews     int64 `json:"totalViews"`
	TotalLikes     int64 `json:"totalLikes"`
	TotalShares    int64 `json:"totalShares"`
}

// Dashboard is the overview served to editors.
type Dashboard struct {
	Overview             DashboardOverview            `json:"overview"`
	MonthlyTrend         []DailyCount                 `json:"monthlyTrend"`
	CategoryDistribution []repositories.CategoryCount `json:"categoryDistribution"`
	TopPosts             []TopBlog                    `json:"topPosts"`
	RoleDistribution     []repositories.RoleCount     `json:"roleDistribution"`
}

// TagStat aggregates one tag across blogs.
type TagStat struct {
	Tag        string `json:"tag"`
	Count      int64  `json:"count"`
	TotalViews int64  `json:"totalViews"`
}

// ContentAnalytics is the content performance view over a trailing window.
type ContentAnalytics struct {
	PeriodDays          int                                `json:"periodDays"`
	Averages            repositories.ContentAverages       `json:"averages"`
	CategoryPerformance []repositories.CategoryPerformance `json:"categoryPerformance"`
	AuthorPerformance   []repositories.AuthorPerformance   `json:"authorPerformance"`
	TagAnalytics        []TagStat                          `json:"tagAnalytics"`
}

// RecentUser is a compact view of a recently authenticated account.
type RecentUser struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	LastLogin *time.Time  `json:"lastLogin,omitempty"`
}

// UserEngagement holds account-wide averages.
type UserEngagement struct {
	repositories.UserAverages
	ActiveUsers int64 `json:"activeUsers"`
}

// UserAnalytics is the admin-only account view over a trailing window.
type UserAnalytics struct {
	PeriodDays        int                         `json:"periodDays"`
	RegistrationTrend []DailyCount                `json:"registrationTrend"`
	RoleActivity      []repositories.RoleActivity `json:"roleActivity"`
	RecentlyActive    []RecentUser                `json:"recentlyActive"`
	Engagement        UserEngagement              `json:"engagement"`
}

// PeriodComparison compares today's count with yesterday's.
type PeriodComparison struct {
	Today     int64 `json:"today"`
	Yesterday int64 `json:"yesterday"`
	Change    int64 `json:"change"`
}

// RecentBlog is a compact view of a recently updated blog.
type RecentBlog struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Status    models.Status `json:"status"`
	Author    string        `json:"author"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// RealtimeSnapshot is the activity of the current day.
type RealtimeSnapshot struct {
	Blogs               PeriodComparison `json:"blogs"`
	Users               PeriodComparison `json:"users"`
	RecentActivity      []RecentBlog     `json:"recentActivity"`
	ActiveUsersLastHour int64            `json:"activeUsersLastHour"`
	GeneratedAt         time.Time        `json:"generatedAt"`
}

// BlogOverview summarises blogs by status and engagement.
type BlogOverview struct {
	Total      int64                         `json:"total"`
	ByStatus   map[models.Status]int64       `json:"byStatus"`
	Featured   int64                         `json:"featured"`
	Engagement repositories.EngagementTotals `json:"engagement"`
}

// AnalyticsService computes read-only views over blogs and users. Nothing
// is cached: every call queries the store. The queries of one view run
// concurrently and are not isolated from each other, so a view taken
// during writes may mix slightly different instants.
type AnalyticsService struct {
	repo   repositories.AnalyticsRepository
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo repositories.AnalyticsRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		loc:    time.Local,
	}
}

// WithClock replaces the clock and the time zone used for calendar days.
func (s *AnalyticsService) WithClock(now func() time.Time, loc *time.Location) *AnalyticsService {
	s.now = now
	if loc != nil {
		s.loc = loc
	}
	return s
}

// ClampPeriod maps a requested window in days onto 1..MaxPeriodDays,
// with DefaultPeriodDays for unset values.
func ClampPeriod(days int) int {
	if days <= 0 {
		return DefaultPeriodDays
	}
	if days > MaxPeriodDays {
		return MaxPeriodDays
	}
	return days
}

func (s *AnalyticsService) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// bucketByDay counts times per calendar day, ascending.
func (s *AnalyticsService) bucketByDay(times []time.Time) []DailyCount {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[t.In(s.loc).Format("2006-01-02")]++
	}
	out := make([]DailyCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DailyCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Dashboard returns the editor dashboard.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)
	published, draft := models.StatusPublished, models.StatusDraft

	d := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, status *models.Status, r repositories.TimeRange) {
		g.Go(func() error {
			n, err := s.repo.CountBlogs(ctx, status, r)
			*dst = n
			return err
		})
	}
	count(&d.Overview.TotalBlogs, nil, repositories.TimeRange{})
	count(&d.Overview.PublishedBlogs, &published, repositories.TimeRange{})
	count(&d.Overview.DraftBlogs, &draft, repositories.TimeRange{})
	count(&d.Overview.RecentBlogs, nil, repositories.Since(weekAgo))
	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx, repositories.TimeRange{})
		d.Overview.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx, repositories.Since(weekAgo))
		d.Overview.RecentUsers = n
		return err
	})
	g.Go(func() error {
		totals, err := s.repo.EngagementTotals(ctx)
		d.Overview.TotalViews = totals.Views
		d.Overview.TotalLikes = totals.Likes
		d.Overview.TotalShares = totals.Shares
		return err
	})
	g.Go(func() error {
		times, err := s.repo.BlogCreationTimes(ctx, monthAgo)
		d.MonthlyTrend = s.bucketByDay(times)
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.CategoryDistribution(ctx)
		d.CategoryDistribution = rows
		return err
	})
	g.Go(func() error {
		blogs, err := s.repo.TopPublished(ctx, dashboardTopPosts)
		d.TopPosts = make([]TopBlog, 0, len(blogs))
		for _, b := range blogs {
			d.TopPosts = append(d.TopPosts, TopBlog{
				ID:          b.ID,
				Title:       b.Title,
				Slug:        b.Slug,
				Category:    b.Category,
				Views:       b.Stats.Views,
				Likes:       b.Stats.Likes,
				PublishedAt: b.PublishedAt,
			})
		}
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.RoleDistribution(ctx)
		d.RoleDistribution = rows
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard aggregation failed", zap.Error(err))
		return nil, err
	}
	return d, nil
}

// Content returns content performance over the trailing periodDays.
func (s *AnalyticsService) Content(ctx context.Context, periodDays int) (*ContentAnalytics, error) {
	periodDays = ClampPeriod(periodDays)
	since := s.now().AddDate(0, 0, -periodDays)

	a := &ContentAnalytics{PeriodDays: periodDays}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		avg, err := s.repo.ContentAverages(ctx, since)
		a.Averages = avg
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.CategoryPerformance(ctx, since)
		a.CategoryPerformance = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.AuthorPerformance(ctx, since, topAuthors)
		a.AuthorPerformance = rows
		return err
	})
	g.Go(func() error {
		sources, err := s.repo.TagSources(ctx, since)
		a.TagAnalytics = aggregateTags(sources, topTags)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("content aggregation failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}

// aggregateTags explodes tag sets and returns the limit most used tags,
// ties broken by name.
func aggregateTags(sources []repositories.TagSource, limit int) []TagStat {
	byTag := make(map[string]*TagStat)
	for _, src := range sources {
		for _, tag := range src.Tags {
			st, ok := byTag[tag]
			if !ok {
				st = &TagStat{Tag: tag}
				byTag[tag] = st
			}
			st.Count++
			st.TotalViews += src.Views
		}
	}
	out := make([]TagStat, 0, len(byTag))
	for _, st := range byTag {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Users returns account analytics over the trailing periodDays. Admin only.
func (s *AnalyticsService) Users(ctx context.Context, caller *models.User, periodDays int) (*UserAnalytics, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	periodDays = ClampPeriod(periodDays)
	since := s.now().AddDate(0, 0, -periodDays)

	a := &UserAnalytics{PeriodDays: periodDays}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		times, err := s.repo.UserCreationTimes(ctx, since)
		a.RegistrationTrend = s.bucketByDay(times)
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.RoleActivity(ctx, since)
		a.RoleActivity = rows
		return err
	})
	g.Go(func() error {
		users, err := s.repo.RecentlyAuthenticated(ctx, recentUsers)
		a.RecentlyActive = make([]RecentUser, 0, len(users))
		for _, u := range users {
			a.RecentlyActive = append(a.RecentlyActive, RecentUser{
				ID:        u.ID,
				Username:  u.Username,
				Role:      u.Role,
				LastLogin: u.LastLogin,
			})
		}
		return err
	})
	g.Go(func() error {
		avg, err := s.repo.UserAverages(ctx)
		a.Engagement.UserAverages = avg
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountActiveUsers(ctx)
		a.Engagement.ActiveUsers = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("user aggregation failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}

// Realtime compares today with yesterday and lists the latest activity.
func (s *AnalyticsService) Realtime(ctx context.Context) (*RealtimeSnapshot, error) {
	now := s.now()
	today := s.startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	snap := &RealtimeSnapshot{GeneratedAt: now}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountBlogs(ctx, nil, repositories.Since(today))
		snap.Blogs.Today = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountBlogs(ctx, nil, repositories.Between(yesterday, today))
		snap.Blogs.Yesterday = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx, repositories.Since(today))
		snap.Users.Today = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx, repositories.Between(yesterday, today))
		snap.Users.Yesterday = n
		return err
	})
	g.Go(func() error {
		blogs, err := s.repo.RecentlyUpdated(ctx, now.Add(-24*time.Hour), recentActivityLimit)
		snap.RecentActivity = make([]RecentBlog, 0, len(blogs))
		for _, b := range blogs {
			rb := RecentBlog{ID: b.ID, Title: b.Title, Slug: b.Slug, Status: b.Status, UpdatedAt: b.UpdatedAt}
			if b.Author != nil {
				rb.Author = b.Author.Username
			}
			snap.RecentActivity = append(snap.RecentActivity, rb)
		}
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUsersLoggedInSince(ctx, now.Add(-time.Hour))
		snap.ActiveUsersLastHour = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("realtime aggregation failed", zap.Error(err))
		return nil, err
	}
	snap.Blogs.Change = snap.Blogs.Today - snap.Blogs.Yesterday
	snap.Users.Change = snap.Users.Today - snap.Users.Yesterday
	return snap, nil
}

// BlogOverview returns blog totals by status with summed engagement.
func (s *AnalyticsService) BlogOverview(ctx context.Context) (*BlogOverview, error) {
	o := &BlogOverview{ByStatus: make(map[models.Status]int64)}
	for _, st := range models.Statuses() {
		o.ByStatus[st] = 0
	}
	g, ctx := errgroup.WithContext(ctx)
	var counts []repositories.StatusCount
	g.Go(func() error {
		var err error
		counts, err = s.repo.StatusCounts(ctx)
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountFeatured(ctx)
		o.Featured = n
		return err
	})
	g.Go(func() error {
		totals, err := s.repo.EngagementTotals(ctx)
		o.Engagement = totals
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, c := range counts {
		o.ByStatus[c.Status] = c.Count
		o.Total += c.Count
	}
	return o, nil
}
