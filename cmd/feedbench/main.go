// feedbench 对比全站信息流在有无页面缓存时的读延迟，并统计缓存窗口内读到的旧数据比例。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

type firstPost struct {
	TopID int64 `json:"top_id"`
	Count int   `json:"count"`
}

func render(_ context.Context, p *service.FeedPage) ([]byte, error) {
	fp := firstPost{Count: len(p.Posts)}
	if len(p.Posts) > 0 {
		fp.TopID = p.Posts[0].ID
	}
	return json.Marshal(fp)
}

func main() {
	authors := flag.Int("authors", 200, "number of authors to seed")
	posts := flag.Int("posts", 20000, "number of posts to seed")
	requests := flag.Int("requests", 3000, "feed reads per scenario")
	rps := flag.Float64("rps", 500, "read rate, requests per second")
	writeEvery := flag.Duration("write-every", 50*time.Millisecond, "interval between concurrent new posts")
	ttl := flag.Duration("ttl", 0, "page cache TTL, defaults to cache.ttl")
	flag.Parse()

	cfg := must(config.Load())
	_ = logger.Init(cfg.Log.Level, "console")
	defer logger.Sync()
	if *ttl <= 0 {
		*ttl = cfg.Cache.TTL
	}

	db := must(database.InitDB(cfg))
	defer database.Close(db)
	seed(db, *authors, *posts)

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	relations := service.NewRelationshipService(repository.NewFollowRepository(db), userRepo, cfg.Follow.AllowSelfFollow)

	pc := must(cache.New(context.Background(), cfg.Cache, cfg.Redis))
	defer pc.Close()
	feed := service.NewFeedService(postRepo, groupRepo, userRepo, relations, pc, *ttl, cfg.Feed.PageSize)

	var authorIDs []int64
	mustDo(db.Model(&model.User{}).Pluck("id", &authorIDs).Error)

	fmt.Printf("authors=%d posts=%d requests=%d rps=%.0f ttl=%v cache=%s\n",
		*authors, *posts, *requests, *rps, *ttl, cfg.Cache.Driver)

	direct := func(ctx context.Context) ([]byte, error) {
		p, err := feed.Compose(ctx, service.GlobalFeed{}, 1)
		if err != nil {
			return nil, err
		}
		return render(ctx, p)
	}
	cached := func(ctx context.Context) ([]byte, error) {
		return feed.RenderGlobal(ctx, 1, render)
	}

	report("No cache", run(db, postRepo, authorIDs, *requests, *rps, *writeEvery, direct))
	_ = pc.InvalidateAll(context.Background())
	report("Page cache", run(db, postRepo, authorIDs, *requests, *rps, *writeEvery, cached))

	if c, ok := pc.(interface{ Counters() cache.Counters }); ok {
		cnt := c.Counters()
		fmt.Printf("cache counters: hits=%d misses=%d compute_errors=%d\n", cnt.Hits, cnt.Misses, cnt.ComputeErrors)
	}
}

type result struct {
	durations []time.Duration
	stale     int
}

func report(name string, r result) {
	fmt.Printf("%-12s avg=%v p95=%v p99=%v stale=%d/%d (%.1f%%)\n",
		name, avg(r.durations), pct(r.durations, 0.95), pct(r.durations, 0.99),
		r.stale, len(r.durations), 100*float64(r.stale)/float64(max(len(r.durations), 1)))
}

// run issues paced reads of the first global page while a writer adds posts.
// A read is stale when its newest post is older than the latest write.
func run(db *gorm.DB, posts repository.PostRepository, authorIDs []int64, n int, rps float64, writeEvery time.Duration, read func(context.Context) ([]byte, error)) result {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var latest atomic.Int64
	var top int64
	mustDo(db.Model(&model.Post{}).Select("COALESCE(MAX(id), 0)").Scan(&top).Error)
	latest.Store(top)

	go func() {
		t := time.NewTicker(writeEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				p := &model.Post{
					AuthorID: authorIDs[gofakeit.Number(0, len(authorIDs)-1)],
					Text:     gofakeit.Sentence(8),
				}
				if err := posts.Create(ctx, p); err != nil {
					if ctx.Err() == nil {
						logger.Warn("write failed", zap.Error(err))
					}
					continue
				}
				latest.Store(p.ID)
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	res := result{durations: make([]time.Duration, 0, n)}
	for i := 0; i < n; i++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		want := latest.Load()
		st := time.Now()
		body, err := read(ctx)
		if err != nil {
			panic(err)
		}
		res.durations = append(res.durations, time.Since(st))

		var fp firstPost
		if json.Unmarshal(body, &fp) == nil && fp.TopID < want {
			res.stale++
		}
	}
	return res
}

func seed(db *gorm.DB, authors, posts int) {
	var existing int64
	mustDo(db.Model(&model.Post{}).Count(&existing).Error)
	if existing >= int64(posts) {
		return
	}

	groups := make([]model.Group, 5)
	for i := range groups {
		groups[i] = model.Group{
			Title:       gofakeit.BuzzWord(),
			Slug:        fmt.Sprintf("g%d-%s", i, gofakeit.Numerify("####")),
			Description: gofakeit.Sentence(6),
		}
	}
	mustDo(db.CreateInBatches(&groups, 100).Error)

	users := make([]model.User, authors)
	for i := range users {
		users[i] = model.User{
			Username:  fmt.Sprintf("%s_%s", gofakeit.Username(), gofakeit.Numerify("######")),
			Email:     gofakeit.Email(),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Password:  "!",
		}
	}
	mustDo(db.CreateInBatches(&users, 500).Error)

	base := time.Now().Add(-time.Duration(posts) * time.Second)
	rows := make([]model.Post, posts)
	for i := range rows {
		rows[i] = model.Post{
			AuthorID:  users[gofakeit.Number(0, len(users)-1)].ID,
			Text:      gofakeit.Sentence(gofakeit.Number(3, 20)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if gofakeit.Bool() {
			gid := groups[gofakeit.Number(0, len(groups)-1)].ID
			rows[i].GroupID = &gid
		}
	}
	mustDo(db.CreateInBatches(&rows, 1000).Error)
	fmt.Printf("seeded %d users, %d posts\n", len(users), len(rows))
}
