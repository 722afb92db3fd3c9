package pantry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"smart-kitchen/domain"
	"smart-kitchen/entities"
	"smart-kitchen/internal/utils/imaging"
	"smart-kitchen/internal/utils/storage"
	"smart-kitchen/pkg/llm"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dateLayout            = "2006-01-02"
	defaultEnrichTimeout  = 90 * time.Second
	receiptFolder         = "receipts"
	expiryWarningDuration = 3 * 24 * time.Hour
	// quantities within quantityEpsilon of each other are equal
	quantityEpsilon       = 1e-9
)

type (
	PantryService interface {
		AddItem(ctx context.Context, req domain.AddPantryItemRequest, userID string) (domain.PantryItemResponse, error)
		AddItems(ctx context.Context, req domain.AddPantryItemsRequest, userID string) ([]domain.PantryItemResponse, error)
		ListItems(ctx context.Context, userID string, page, limit int) ([]domain.PantryItemResponse, int64, error)
		GetItem(ctx context.Context, id string, userID string) (domain.PantryItemResponse, error)
		UpdateItem(ctx context.Context, id string, req domain.UpdatePantryItemRequest, userID string) (domain.PantryItemResponse, error)
		DeleteItem(ctx context.Context, id string, userID string) error
		ClearPantry(ctx context.Context, userID string) (int64, error)
		ConsumeItem(ctx context.Context, id string, req domain.ConsumePantryItemRequest, userID string) (domain.ConsumePantryItemResponse, error)
		ScanReceipt(ctx context.Context, req domain.ScanReceiptRequest, userID string) (domain.ScanReceiptResponse, error)
		ConfirmReceipt(ctx context.Context, req domain.ConfirmReceiptRequest, userID string) ([]domain.PantryItemResponse, error)
		// Wait blocks until background enrichment has finished.
		Wait()
	}

	Options struct {
		// EnrichTimeout bounds a single background enrichment.
		EnrichTimeout time.Duration
		// CacheResponses lets enrichment reuse earlier identical answers.
		CacheResponses bool
	}

	pantryService struct {
		pantryRepository PantryRepository
		generator        llm.Service
		s3               storage.AwsS3
		opts             Options
		now              func() time.Time
		wg               sync.WaitGroup
	}
)

// NewPantryService wires the pantry manager. s3 may be nil, in which case
// receipt images are not archived.
func NewPantryService(pantryRepository PantryRepository, generator llm.Service, s3 storage.AwsS3, opts Options) PantryService {
	if opts.EnrichTimeout <= 0 {
		opts.EnrichTimeout = defaultEnrichTimeout
	}
	return &pantryService{
		pantryRepository: pantryRepository,
		generator:        generator,
		s3:               s3,
		opts:             opts,
		now:              time.Now,
	}
}

func (s *pantryService) AddItem(ctx context.Context, req domain.AddPantryItemRequest, userID string) (domain.PantryItemResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.PantryItemResponse{}, domain.ErrParseUUID
	}

	item, err := newPantryItem(req, userUUID)
	if err != nil {
		return domain.PantryItemResponse{}, err
	}
	if err := s.pantryRepository.Create(ctx, item); err != nil {
		return domain.PantryItemResponse{}, err
	}

	if item.Nutrition.Data().IsEmpty() {
		s.enrichAsync(item.ID, userUUID)
	}
	return s.toResponse(item), nil
}

func (s *pantryService) AddItems(ctx context.Context, req domain.AddPantryItemsRequest, userID string) ([]domain.PantryItemResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	items := make([]*entities.PantryItem, 0, len(req.Items))
	for _, r := range req.Items {
		item, err := newPantryItem(r, userUUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, err)
		}
		items = append(items, item)
	}
	if err := s.pantryRepository.CreateMany(ctx, items); err != nil {
		return nil, err
	}

	res := make([]domain.PantryItemResponse, 0, len(items))
	for _, item := range items {
		if item.Nutrition.Data().IsEmpty() {
			s.enrichAsync(item.ID, userUUID)
		}
		res = append(res, s.toResponse(item))
	}
	return res, nil
}

func (s *pantryService) ListItems(ctx context.Context, userID string, page, limit int) ([]domain.PantryItemResponse, int64, error) {
	items, count, err := s.pantryRepository.List(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.PantryItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, s.toResponse(item))
	}
	return res, count, nil
}

func (s *pantryService) GetItem(ctx context.Context, id string, userID string) (domain.PantryItemResponse, error) {
	item, err := s.getItem(ctx, id, userID)
	if err != nil {
		return domain.PantryItemResponse{}, err
	}
	return s.toResponse(item), nil
}

func (s *pantryService) UpdateItem(ctx context.Context, id string, req domain.UpdatePantryItemRequest, userID string) (domain.PantryItemResponse, error) {
	item, err := s.getItem(ctx, id, userID)
	if err != nil {
		return domain.PantryItemResponse{}, err
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return domain.PantryItemResponse{}, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Notes != "" {
		item.Notes = req.Notes
	}
	if req.ExpiryDate != "" {
		expiry, err := parseExpiry(req.ExpiryDate)
		if err != nil {
			return domain.PantryItemResponse{}, err
		}
		item.ExpiryDate = expiry
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Nutrition != nil {
		item.Nutrition = datatypes.NewJSONType(nutritionFromRequest(*req.Nutrition))
	}

	if err := s.pantryRepository.Update(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PantryItemResponse{}, domain.ErrPantryItemNotFound
		}
		return domain.PantryItemResponse{}, err
	}
	return s.toResponse(item), nil
}

func (s *pantryService) DeleteItem(ctx context.Context, id string, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrParseUUID
	}
	if err := s.pantryRepository.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPantryItemNotFound
		}
		return err
	}
	return nil
}

func (s *pantryService) ClearPantry(ctx context.Context, userID string) (int64, error) {
	return s.pantryRepository.DeleteAll(ctx, userID)
}

func (s *pantryService) ConsumeItem(ctx context.Context, id string, req domain.ConsumePantryItemRequest, userID string) (domain.ConsumePantryItemResponse, error) {
	itemUUID, err := uuid.Parse(id)
	if err != nil {
		return domain.ConsumePantryItemResponse{}, domain.ErrParseUUID
	}

	var res []domain.ConsumePantryItemResponse
	err = s.pantryRepository.WithTx(ctx, func(repo PantryRepository) error {
		var txErr error
		res, txErr = Consume(ctx, repo, userID, map[uuid.UUID]float64{itemUUID: req.Amount})
		return txErr
	})
	if err != nil {
		return domain.ConsumePantryItemResponse{}, err
	}
	return res[0], nil
}

// Consume subtracts each amount from the owner's pantry items. Any amount
// larger than what is stored fails the whole call with
// domain.ErrInsufficientQuantity; an item drawn down to zero (within
// quantityEpsilon) is deleted. Callers wanting atomicity pass a repository from WithTx.
func Consume(ctx context.Context, repo PantryRepository, userID string, amounts map[uuid.UUID]float64) ([]domain.ConsumePantryItemResponse, error) {
	items := make(map[uuid.UUID]*entities.PantryItem, len(amounts))
	for id, amount := range amounts {
		if amount <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		item, err := repo.GetByID(ctx, id.String(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%s: %w", id, domain.ErrPantryItemNotFound)
			}
			return nil, err
		}
		if amount > item.Quantity+quantityEpsilon {
			return nil, fmt.Errorf("%s has %g %s, %g requested: %w",
				item.Name, item.Quantity, item.Unit, amount, domain.ErrInsufficientQuantity)
		}
		items[id] = item
	}

	res := make([]domain.ConsumePantryItemResponse, 0, len(items))
	for id, item := range items {
		remaining := item.Quantity - amounts[id]
		if remaining <= quantityEpsilon {
			if err := repo.Delete(ctx, id.String(), userID); err != nil {
				return nil, err
			}
			res = append(res, domain.ConsumePantryItemResponse{ID: id.String(), Remaining: 0, Deleted: true})
			continue
		}
		item.Quantity = remaining
		if err := repo.Update(ctx, item); err != nil {
			return nil, err
		}
		res = append(res, domain.ConsumePantryItemResponse{ID: id.String(), Remaining: remaining})
	}
	return res, nil
}

func (s *pantryService) ScanReceipt(ctx context.Context, req domain.ScanReceiptRequest, userID string) (domain.ScanReceiptResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ScanReceiptResponse{}, domain.ErrParseUUID
	}

	file, err := req.ReceiptImage.Open()
	if err != nil {
		return domain.ScanReceiptResponse{}, err
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, imaging.MaxInputSize+1))
	if err != nil {
		return domain.ScanReceiptResponse{}, err
	}
	img, err := imaging.Prepare(raw)
	if err != nil {
		return domain.ScanReceiptResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidImageFormat, err)
	}

	scan := &entities.ReceiptScan{
		ID:     uuid.New(),
		UserID: userUUID,
		Status: entities.ReceiptStatusPending,
	}
	var archiveKey string
	if s.s3 != nil {
		key, err := s.s3.UploadFile(ctx, fmt.Sprintf("receipt-%s.jpg", scan.ID), img.Data, img.MIME, receiptFolder)
		if err != nil {
			log.Warnw("receipt archive failed", "scan_id", scan.ID, "error", err)
		} else {
			archiveKey = key
			scan.ImageURL = s.s3.GetPublicLinkKey(key)
		}
	}
	if err := s.pantryRepository.CreateReceiptScan(ctx, scan); err != nil {
		if archiveKey != "" {
			if delErr := s.s3.DeleteFile(ctx, archiveKey); delErr != nil {
				log.Warnw("orphaned receipt image", "key", archiveKey, "error", delErr)
			}
		}
		return domain.ScanReceiptResponse{}, err
	}

	var items []domain.ReceiptItem
	err = s.generator.Generate(ctx, llm.Request{
		Template: receiptTemplate,
		System:   receiptSystemPrompt,
		Shape:    ReceiptItemShape,
		List:     true,
		Images:   []llm.ContentBlock{llm.ImageBlock(img.MIME, img.Data)},
		OwnerID:  &userUUID,
	}, &items)
	if err == nil && len(items) == 0 {
		err = domain.ErrNoReceiptItems
	}
	if err != nil {
		scan.Status = entities.ReceiptStatusFailed
		scan.Error = err.Error()
		if updateErr := s.pantryRepository.UpdateReceiptScan(ctx, scan); updateErr != nil {
			log.Errorw("receipt scan update failed", "scan_id", scan.ID, "error", updateErr)
		}
		return domain.ScanReceiptResponse{}, err
	}

	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
	}

	results, err := json.Marshal(items)
	if err != nil {
		return domain.ScanReceiptResponse{}, err
	}
	scan.Status = entities.ReceiptStatusProcessed
	scan.Results = datatypes.JSON(results)
	if err := s.pantryRepository.UpdateReceiptScan(ctx, scan); err != nil {
		return domain.ScanReceiptResponse{}, err
	}

	log.Infow("receipt scanned", "scan_id", scan.ID, "user_id", userID, "items", len(items))
	return domain.ScanReceiptResponse{
		ScanID:   scan.ID.String(),
		ImageURL: scan.ImageURL,
		Status:   scan.Status,
		Items:    items,
	}, nil
}

func (s *pantryService) ConfirmReceipt(ctx context.Context, req domain.ConfirmReceiptRequest, userID string) ([]domain.PantryItemResponse, error) {
	if _, err := uuid.Parse(req.ScanID); err != nil {
		return nil, domain.ErrParseUUID
	}
	if _, err := s.pantryRepository.GetReceiptScanByID(ctx, req.ScanID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReceiptScanNotFound
		}
		return nil, err
	}

	today := s.now()
	bulk := domain.AddPantryItemsRequest{Items: make([]domain.AddPantryItemRequest, 0, len(req.Items))}
	for _, line := range req.Items {
		add := domain.AddPantryItemRequest{
			Name:     line.Name,
			Quantity: line.Quantity,
			Unit:     line.Unit,
			Price:    line.Price,
		}
		if line.ShelfLifeDays > 0 {
			add.ExpiryDate = today.AddDate(0, 0, line.ShelfLifeDays).Format(dateLayout)
		}
		bulk.Items = append(bulk.Items, add)
	}
	return s.AddItems(ctx, bulk, userID)
}

func (s *pantryService) Wait() {
	s.wg.Wait()
}

// enrichAsync runs detached from the request. Failures are only logged.
func (s *pantryService) enrichAsync(itemID, userID uuid.UUID) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.EnrichTimeout)
		defer cancel()

		if err := s.enrich(ctx, itemID, userID); err != nil {
			log.Errorw("pantry enrichment failed", "item_id", itemID, "user_id", userID, "error", err)
			return
		}
		log.Infow("pantry item enriched", "item_id", itemID, "user_id", userID)
	}()
}

func (s *pantryService) enrich(ctx context.Context, itemID, userID uuid.UUID) error {
	item, err := s.pantryRepository.GetByID(ctx, itemID.String(), userID.String())
	if err != nil {
		return err
	}

	var result domain.PantryEnrichment
	if err := s.generator.Generate(ctx, llm.Request{
		Template: ingredientAnalysisTemplate,
		Vars: map[string]string{
			"item":  describeItem(item),
			"today": s.now().Format(dateLayout),
		},
		System:   pantrySystemPrompt,
		Shape:    EnrichmentShape,
		OwnerID:  &userID,
		UseCache: s.opts.CacheResponses,
	}, &result); err != nil {
		return err
	}

	// The user may have edited the item while the model was answering.
	current, err := s.pantryRepository.GetByID(ctx, itemID.String(), userID.String())
	if err != nil {
		return err
	}
	merged := MergeEnrichment(*current, result, s.now())
	return s.pantryRepository.Update(ctx, &merged)
}

// MergeEnrichment fills the item's empty or zero fields from an enrichment
// result. Values already present on the item are never replaced.
func MergeEnrichment(item entities.PantryItem, e domain.PantryEnrichment, today time.Time) entities.PantryItem {
	if item.StandardName == "" {
		item.StandardName = strings.TrimSpace(e.StandardName)
	}
	if item.Category == "" {
		item.Category = strings.TrimSpace(e.Category)
	}
	if item.Notes == "" {
		item.Notes = strings.TrimSpace(e.Notes)
	}
	if item.ExpiryDate == nil && e.ExpiryDays > 0 {
		expiry := truncateDay(today).AddDate(0, 0, e.ExpiryDays)
		item.ExpiryDate = &expiry
	}

	n := item.Nutrition.Data()
	if n.StandardUnit == "" {
		n.StandardUnit = e.Nutrition.StandardUnit
	}
	n.Calories = preferExisting(n.Calories, e.Nutrition.Calories)
	n.Protein = preferExisting(n.Protein, e.Nutrition.Protein)
	n.Carbs = preferExisting(n.Carbs, e.Nutrition.Carbs)
	n.Fat = preferExisting(n.Fat, e.Nutrition.Fat)
	n.Fiber = preferExisting(n.Fiber, e.Nutrition.Fiber)
	item.Nutrition = datatypes.NewJSONType(n)
	return item
}

func preferExisting(current, guess float64) float64 {
	if current != 0 {
		return current
	}
	return guess
}

func (s *pantryService) getItem(ctx context.Context, id, userID string) (*entities.PantryItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	item, err := s.pantryRepository.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPantryItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *pantryService) toResponse(item *entities.PantryItem) domain.PantryItemResponse {
	n := item.Nutrition.Data()
	return domain.PantryItemResponse{
		ID:           item.ID.String(),
		Name:         item.Name,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		Category:     item.Category,
		StandardName: item.StandardName,
		Notes:        item.Notes,
		ExpiryDate:   item.ExpiryDate,
		Price:        item.Price,
		Status:       determineStatus(item.ExpiryDate, s.now()),
		Nutrition: domain.NutritionResponse{
			StandardUnit: n.StandardUnit,
			Calories:     n.Calories,
			Protein:      n.Protein,
			Carbs:        n.Carbs,
			Fat:          n.Fat,
			Fiber:        n.Fiber,
		},
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func newPantryItem(req domain.AddPantryItemRequest, userID uuid.UUID) (*entities.PantryItem, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	var nutrition entities.Nutrition
	if req.Nutrition != nil {
		nutrition = nutritionFromRequest(*req.Nutrition)
	}
	return &entities.PantryItem{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       strings.TrimSpace(req.Name),
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Category:   req.Category,
		Notes:      req.Notes,
		ExpiryDate: expiry,
		Price:      req.Price,
		Nutrition:  datatypes.NewJSONType(nutrition),
	}, nil
}

func nutritionFromRequest(n domain.NutritionRequest) entities.Nutrition {
	return entities.Nutrition{
		StandardUnit: n.StandardUnit,
		Calories:     n.Calories,
		Protein:      n.Protein,
		Carbs:        n.Carbs,
		Fat:          n.Fat,
		Fiber:        n.Fiber,
	}
}

func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, domain.ErrInvalidExpiryDate
	}
	return &t, nil
}

func describeItem(item *entities.PantryItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\nquantity: %g %s", item.Name, item.Quantity, item.Unit)
	if item.Category != "" {
		fmt.Fprintf(&b, "\ncategory: %s", item.Category)
	}
	if item.Notes != "" {
		fmt.Fprintf(&b, "\nnotes: %s", item.Notes)
	}
	return b.String()
}

func determineStatus(expiry *time.Time, now time.Time) string {
	if expiry == nil {
		return domain.PantryStatusSafe
	}
	if expiry.Before(truncateDay(now)) {
		return domain.PantryStatusExpired
	}
	if expiry.Before(now.Add(expiryWarningDuration)) {
		return domain.PantryStatusWarning
	}
	return domain.PantryStatusSafe
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
