package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"paletteapi/apperrors"
	"paletteapi/models"
	"paletteapi/repository"
	"paletteapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	TypeTagItem = "wardrobe:tag_item"
	TypeAudit   = "wardrobe:audit"

	QueueWardrobe = "wardrobe"

	// maxTaggingAttempts is how many tagger failures an item survives
	// before it is marked failed and graded from its photo alone.
	maxTaggingAttempts = 3
)

// Enqueuer is the part of *asynq.Client the API uses.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type TagItemPayload struct {
	ItemID uint `json:"item_id"`
}

func NewTagItemTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(TagItemPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTagItem, payload), nil
}

func NewAuditTask() *asynq.Task {
	return asynq.NewTask(TypeAudit, nil)
}

func EnqueueTagging(q Enqueuer, itemID uint) error {
	task, err := NewTagItemTask(itemID)
	if err != nil {
		return err
	}
	info, err := q.Enqueue(task, asynq.MaxRetry(maxTaggingAttempts), asynq.Queue(QueueWardrobe))
	if err != nil {
		return fmt.Errorf("enqueue tagging for item %d: %w", itemID, err)
	}
	log.Info().Uint("item_id", itemID).Str("task_id", info.ID).Msg("tagging enqueued")
	return nil
}

type TaggingDeps struct {
	Repo     repository.Repository
	Storage  services.StorageProvider
	Tagger   services.ClothingTagger
	Style    *services.StyleService
	Notifier services.Notifier
}

// HandleTagItemTask describes an uploaded item with the vision tagger,
// fills a missing color from the photo, grades the item against its
// owner's palette and tells the owner it is ready.
func HandleTagItemTask(ctx context.Context, t *asynq.Task, deps TaggingDeps) error {
	var p TagItemPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	item, err := deps.Repo.GetWardrobeItem(ctx, p.ItemID)
	if errors.Is(err, apperrors.ErrNotFound) {
		log.Info().Uint("item_id", p.ItemID).Msg("item deleted before tagging")
		return nil
	}
	if err != nil {
		return err
	}
	if item.TaggingStatus == models.TaggingTagged {
		return nil
	}

	image, err := deps.Storage.Download(ctx, item.FilePath)
	if err != nil {
		return saveTaggingFail(ctx, deps, &item, nil, err)
	}
	tags, err := deps.Tagger.TagClothing(ctx, image, http.DetectContentType(image))
	if err != nil {
		return saveTaggingFail(ctx, deps, &item, image, err)
	}

	tags.Apply(&item)
	fillColorFromPhoto(&item, image)
	item.TaggingStatus = models.TaggingTagged
	item.TaggingErrorMessage = nil
	if err := deps.Style.AssignMatch(ctx, &item); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	log.Info().
		Uint("item_id", item.ID).
		Str("category", string(item.Category)).
		Str("match_level", string(item.MatchLevel)).
		Msg("item tagged")

	notifyTagged(ctx, deps.Notifier, item)
	return nil
}

func fillColorFromPhoto(item *models.WardrobeItem, image []byte) {
	if item.ColorHex != nil || image == nil {
		return
	}
	hex, err := services.DominantColor(image)
	if err != nil {
		log.Warn().Err(err).Uint("item_id", item.ID).Msg("no dominant color")
		return
	}
	item.ColorHex = &hex
	services.FillColorName(item)
}

// saveTaggingFail records a tagging failure. Until the attempts run out the
// error goes back to asynq for a retry; after that the item is graded from
// whatever the photo gives and marked failed.
func saveTaggingFail(ctx context.Context, deps TaggingDeps, item *models.WardrobeItem, image []byte, cause error) error {
	item.TaggingRetryTimes++
	item.TaggingErrorMessage = services.StrPointer(cause.Error())
	log.Warn().Err(cause).Uint("item_id", item.ID).Int("attempt", item.TaggingRetryTimes).Msg("tagging failed")

	if item.TaggingRetryTimes < maxTaggingAttempts {
		if err := deps.Repo.SaveWardrobeItem(ctx, item); err != nil {
			sentry.CaptureException(fmt.Errorf("[Item %v] saving tagging failure: %w", item.ID, err))
		}
		return cause
	}

	sentry.CaptureException(fmt.Errorf("[Item %v] tagging gave up: %w", item.ID, cause))
	item.TaggingStatus = models.TaggingFailed
	fillColorFromPhoto(item, image)
	if err := deps.Style.AssignMatch(ctx, item); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%v: %w", cause, asynq.SkipRetry)
}

func notifyTagged(ctx context.Context, notifier services.Notifier, item models.WardrobeItem) {
	if notifier == nil {
		return
	}
	name := string(item.Category)
	if item.Subcategory != nil {
		name = *item.Subcategory
	}
	err := notifier.Notify(ctx, item.UserAccountID,
		"Wardrobe updated",
		fmt.Sprintf("Your %s is ready: a %s match for your palette.", name, item.MatchLevel),
		map[string]string{
			"item_id":     fmt.Sprint(item.ID),
			"match_level": string(item.MatchLevel),
		},
	)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", item.UserAccountID).Msg("tagging notification failed")
		sentry.CaptureException(err)
	}
}

// HandleAuditTask regrades items left on an outdated analysis version.
func HandleAuditTask(ctx context.Context, t *asynq.Task, style *services.StyleService, batchSize int) error {
	n, err := style.RecomputeStale(ctx, batchSize)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("match audit: %w", err))
		return err
	}
	if n > 0 {
		log.Warn().Int("regraded", n).Msg("match audit fixed stale items")
	} else {
		log.Debug().Msg("match audit found nothing stale")
	}
	return nil
}
