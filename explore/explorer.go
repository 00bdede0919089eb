// Package explore holds the model browsing state: the filter tuple, the
// current page of results and the user's favorites.
package explore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/uistore"

	"github.com/go-playground/validator"
	log "github.com/sirupsen/logrus"
)

const (
	PageLimit = 12

	listFallback     = "모델 목록을 불러오지 못했습니다."
	favoriteFallback = "즐겨찾기 변경에 실패했습니다."
)

var validate = validator.New()

type Filters struct {
	Style    string `json:"style" query:"style"`
	Gender   string `json:"gender" query:"gender"`
	AgeRange string `json:"age_range" query:"age_range"`
}

type InvalidQueryError struct {
	Err error
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid explore query: %v", e.Err)
}

func (e *InvalidQueryError) Unwrap() error {
	return e.Err
}

type View struct {
	Query       models.ModelsQuery `json:"query"`
	Items       []models.AIModel   `json:"items"`
	Total       int                `json:"total"`
	TotalPages  int                `json:"total_pages"`
	Loading     bool               `json:"loading"`
	Error       string             `json:"error,omitempty"`
	FavoriteIDs []string           `json:"favorite_ids"`
}

type Explorer struct {
	modelService    services.ModelServiceProvider
	favoriteService services.FavoriteServiceProvider
	notifier        uistore.Notifier

	mu        sync.Mutex
	query     models.ModelsQuery
	seq       int
	loading   bool
	page      *models.ModelsPage
	errMsg    string
	favorites map[string]struct{}
}

func NewExplorer(modelService services.ModelServiceProvider, favoriteService services.FavoriteServiceProvider, notifier uistore.Notifier) *Explorer {
	return &Explorer{
		modelService:    modelService,
		favoriteService: favoriteService,
		notifier:        notifier,
		query:           models.ModelsQuery{Sort: models.SortRecent, Page: 1, Limit: PageLimit},
		favorites:       map[string]struct{}{},
	}
}

// Load fetches the current tuple as is.
func (e *Explorer) Load(ctx context.Context) error {
	return e.apply(ctx, func(q *models.ModelsQuery) {})
}

func (e *Explorer) SetFilters(ctx context.Context, f Filters) error {
	return e.apply(ctx, func(q *models.ModelsQuery) {
		q.Style = f.Style
		q.Gender = f.Gender
		q.AgeRange = f.AgeRange
		q.Page = 1
	})
}

func (e *Explorer) SetKeyword(ctx context.Context, keyword string) error {
	return e.apply(ctx, func(q *models.ModelsQuery) {
		q.Keyword = keyword
		q.Page = 1
	})
}

func (e *Explorer) SetSort(ctx context.Context, key models.SortKey) error {
	return e.apply(ctx, func(q *models.ModelsQuery) {
		q.Sort = key
		q.Page = 1
	})
}

func (e *Explorer) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return &InvalidQueryError{Err: fmt.Errorf("page must be at least 1, got %d", page)}
	}
	return e.apply(ctx, func(q *models.ModelsQuery) {
		q.Page = page
	})
}

// apply commits a new tuple and issues one fetch for it. Only the answer to
// the latest tuple is kept.
func (e *Explorer) apply(ctx context.Context, mutate func(q *models.ModelsQuery)) error {
	e.mu.Lock()
	q := e.query
	mutate(&q)
	if err := validate.Struct(q); err != nil {
		e.mu.Unlock()
		return &InvalidQueryError{Err: err}
	}
	e.query = q
	e.seq++
	seq := e.seq
	e.loading = true
	e.mu.Unlock()

	page, err := e.modelService.ListModels(ctx, q)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.seq {
		return err
	}
	e.loading = false
	if err != nil {
		e.errMsg = services.UserMessage(err, listFallback)
		log.WithError(err).WithField("query", q.CacheKey()).Warn("model list failed")
		if e.notifier != nil {
			e.notifier.AddToast(models.ToastError, e.errMsg, 0)
		}
		return err
	}
	e.errMsg = ""
	e.page = page
	return nil
}

// Loaded reports whether any page has been fetched yet.
func (e *Explorer) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page != nil
}

func (e *Explorer) Query() models.ModelsQuery {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// TotalPages is ceil(total/limit) and never less than one.
func (e *Explorer) TotalPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalPages()
}

func (e *Explorer) totalPages() int {
	if e.page == nil {
		return 1
	}
	return TotalPages(e.page.Total, e.query.Limit)
}

func TotalPages(total, limit int) int {
	if limit <= 0 {
		limit = PageLimit
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

// Detail loads one model and counts the view. A failed view count is only logged.
func (e *Explorer) Detail(ctx context.Context, modelID string) (*models.AIModel, error) {
	model, err := e.modelService.GetModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if err := e.modelService.RecordView(ctx, modelID); err != nil {
		log.WithError(err).WithField("model_id", modelID).Warn("failed to record model view")
	}
	return model, nil
}

func (e *Explorer) LoadFavorites(ctx context.Context) error {
	page, err := e.favoriteService.GetFavorites(ctx)
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(page.Items))
	for _, f := range page.Items {
		set[f.ModelID] = struct{}{}
	}
	e.mu.Lock()
	e.favorites = set
	e.mu.Unlock()
	return nil
}

func (e *Explorer) IsFavorite(modelID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.favorites[modelID]
	return ok
}

// ToggleFavorite flips the favorite flag upstream first and reports the new state.
func (e *Explorer) ToggleFavorite(ctx context.Context, modelID string) (bool, error) {
	wasFavorite := e.IsFavorite(modelID)

	var err error
	if wasFavorite {
		err = e.favoriteService.RemoveFavorite(ctx, modelID)
	} else {
		_, err = e.favoriteService.AddFavorite(ctx, modelID)
	}
	if err != nil {
		msg := services.UserMessage(err, favoriteFallback)
		if e.notifier != nil {
			e.notifier.AddToast(models.ToastError, msg, 0)
		}
		return wasFavorite, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if wasFavorite {
		delete(e.favorites, modelID)
		return false, nil
	}
	e.favorites[modelID] = struct{}{}
	return true, nil
}

func (e *Explorer) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := View{
		Query:       e.query,
		Items:       []models.AIModel{},
		TotalPages:  e.totalPages(),
		Loading:     e.loading,
		Error:       e.errMsg,
		FavoriteIDs: make([]string, 0, len(e.favorites)),
	}
	if e.page != nil {
		v.Items = append(v.Items, e.page.Items...)
		v.Total = e.page.Total
	}
	for id := range e.favorites {
		v.FavoriteIDs = append(v.FavoriteIDs, id)
	}
	sort.Strings(v.FavoriteIDs)
	return v
}
