package pantry

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"smart-kitchen/domain"
	"smart-kitchen/entities"
	"smart-kitchen/internal/utils/testdb"
	"smart-kitchen/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type scriptedClient struct {
	mu    sync.Mutex
	calls int
	reply func(prompt string, hasImage bool) (string, error)
}

func (c *scriptedClient) Send(_ context.Context, messages []llm.Message, _ string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	var prompt strings.Builder
	hasImage := false
	for _, m := range messages {
		for _, b := range m.Content {
			if b.Type == llm.BlockImage {
				hasImage = true
			}
			prompt.WriteString(b.Text)
		}
	}
	return c.reply(prompt.String(), hasImage)
}

func (c *scriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

const milkEnrichment = `Here is the item:
{"standard_name":"whole milk","category":"dairy","notes":"keep refrigerated","expiry_days":7,
 "nutrition":{"standard_unit":"1 cup","calories":149,"protein":7.7,"carbs":11.7,"fat":7.9,"fiber":0}}`

func newTestService(t *testing.T, client llm.Client) (PantryService, PantryRepository) {
	t.Helper()
	repo := NewPantryRepository(testdb.New(t))
	svc := NewPantryService(repo, llm.NewService(client, nil), nil, Options{EnrichTimeout: 5 * time.Second})
	return svc, repo
}

func TestAddItem_EnrichesInBackground(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{reply: func(prompt string, _ bool) (string, error) {
		assert.Contains(t, prompt, "name: milk")
		assert.Contains(t, prompt, "nutrition.standard_unit")
		return milkEnrichment, nil
	}}
	svc, _ := newTestService(t, client)
	userID := uuid.NewString()

	created, err := svc.AddItem(ctx, domain.AddPantryItemRequest{Name: "milk", Quantity: 1, Unit: "gallon"}, userID)
	require.NoError(t, err)
	assert.Empty(t, created.Nutrition.StandardUnit)

	svc.Wait()

	got, err := svc.GetItem(ctx, created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "milk", got.Name)
	assert.Equal(t, "gallon", got.Unit)
	assert.Equal(t, "whole milk", got.StandardName)
	assert.Equal(t, "dairy", got.Category)
	assert.Equal(t, "1 cup", got.Nutrition.StandardUnit)
	assert.Greater(t, got.Nutrition.Calories, 0.0)
	require.NotNil(t, got.ExpiryDate)
	assert.Equal(t, 1, client.Calls())
}

func TestAddItem_WithNutritionSkipsEnrichment(t *testing.T) {
	client := &scriptedClient{reply: func(string, bool) (string, error) { return milkEnrichment, nil }}
	svc, _ := newTestService(t, client)

	_, err := svc.AddItem(context.Background(), domain.AddPantryItemRequest{
		Name: "egg", Quantity: 12, Unit: "units",
		Nutrition: &domain.NutritionRequest{StandardUnit: "1 egg", Calories: 72},
	}, uuid.NewString())
	require.NoError(t, err)
	svc.Wait()

	assert.Zero(t, client.Calls())
}

func TestAddItem_EnrichmentFailureKeepsItem(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{reply: func(string, bool) (string, error) {
		return "", &llm.GenerationError{Provider: "fake", StatusCode: 401}
	}}
	svc, _ := newTestService(t, client)
	userID := uuid.NewString()

	created, err := svc.AddItem(ctx, domain.AddPantryItemRequest{Name: "rice", Quantity: 500, Unit: "grams"}, userID)
	require.NoError(t, err)
	svc.Wait()

	got, err := svc.GetItem(ctx, created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "rice", got.Name)
	assert.Empty(t, got.Nutrition.StandardUnit)
}

func TestAddItem_Validation(t *testing.T) {
	svc, _ := newTestService(t, &scriptedClient{})

	_, err := svc.AddItem(context.Background(), domain.AddPantryItemRequest{Name: "x", Quantity: 1, Unit: "g", ExpiryDate: "tomorrow"}, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInvalidExpiryDate)

	_, err = svc.AddItem(context.Background(), domain.AddPantryItemRequest{Name: "x", Quantity: 1, Unit: "g"}, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestMergeEnrichment_KeepsKnownValues(t *testing.T) {
	item := entities.PantryItem{
		Name:         "butter",
		StandardName: "unsalted butter",
		Nutrition:    datatypes.NewJSONType(entities.Nutrition{StandardUnit: "1 tbsp", Calories: 102}),
	}
	enrichment := domain.PantryEnrichment{
		StandardName: "butter",
		Category:     "dairy",
		Nutrition:    domain.NutritionResponse{StandardUnit: "100g", Calories: 0, Fat: 11.5},
	}

	merged := MergeEnrichment(item, enrichment, time.Now())

	n := merged.Nutrition.Data()
	assert.Equal(t, 102.0, n.Calories)
	assert.Equal(t, "1 tbsp", n.StandardUnit)
	assert.Equal(t, 11.5, n.Fat)
	assert.Equal(t, "unsalted butter", merged.StandardName)
	assert.Equal(t, "dairy", merged.Category)
}

func TestMergeEnrichment_ExpiryFromDays(t *testing.T) {
	today := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	merged := MergeEnrichment(entities.PantryItem{}, domain.PantryEnrichment{ExpiryDays: 5}, today)

	require.NotNil(t, merged.ExpiryDate)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), *merged.ExpiryDate)

	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	kept := MergeEnrichment(entities.PantryItem{ExpiryDate: &fixed}, domain.PantryEnrichment{ExpiryDays: 5}, today)
	assert.Equal(t, fixed, *kept.ExpiryDate)
}

func seedItem(t *testing.T, svc PantryService, userID, name string, qty float64) domain.PantryItemResponse {
	t.Helper()
	item, err := svc.AddItem(context.Background(), domain.AddPantryItemRequest{
		Name: name, Quantity: qty, Unit: "units",
		Nutrition: &domain.NutritionRequest{StandardUnit: "1 unit", Calories: 10},
	}, userID)
	require.NoError(t, err)
	return item
}

func TestConsumeItem_OverdrawRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &scriptedClient{})
	userID := uuid.NewString()
	item := seedItem(t, svc, userID, "egg", 2)

	_, err := svc.ConsumeItem(ctx, item.ID, domain.ConsumePantryItemRequest{Amount: 3}, userID)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	got, err := svc.GetItem(ctx, item.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Quantity)
}

func TestConsumeItem_PartialThenExact(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &scriptedClient{})
	userID := uuid.NewString()
	item := seedItem(t, svc, userID, "egg", 6)

	res, err := svc.ConsumeItem(ctx, item.ID, domain.ConsumePantryItemRequest{Amount: 4}, userID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Remaining)
	assert.False(t, res.Deleted)

	res, err = svc.ConsumeItem(ctx, item.ID, domain.ConsumePantryItemRequest{Amount: 2}, userID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	_, err = svc.GetItem(ctx, item.ID, userID)
	assert.ErrorIs(t, err, domain.ErrPantryItemNotFound)
}

func TestConsumeItem_FractionalAmountsEmptyTheItem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &scriptedClient{})
	userID := uuid.NewString()
	item := seedItem(t, svc, userID, "olive oil", 1)

	res, err := svc.ConsumeItem(ctx, item.ID, domain.ConsumePantryItemRequest{Amount: 0.7}, userID)
	require.NoError(t, err)
	assert.False(t, res.Deleted)

	res, err = svc.ConsumeItem(ctx, item.ID, domain.ConsumePantryItemRequest{Amount: 0.3}, userID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Zero(t, res.Remaining)

	_, err = svc.GetItem(ctx, item.ID, userID)
	assert.ErrorIs(t, err, domain.ErrPantryItemNotFound)
}

func TestItemIDMustBeUUID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &scriptedClient{})
	userID := uuid.NewString()

	_, err := svc.GetItem(ctx, "not-a-uuid", userID)
	assert.ErrorIs(t, err, domain.ErrParseUUID)

	_, err = svc.UpdateItem(ctx, "not-a-uuid", domain.UpdatePantryItemRequest{Name: "x"}, userID)
	assert.ErrorIs(t, err, domain.ErrParseUUID)

	err = svc.DeleteItem(ctx, "not-a-uuid", userID)
	assert.ErrorIs(t, err, domain.ErrParseUUID)

	_, err = svc.ConfirmReceipt(ctx, domain.ConfirmReceiptRequest{ScanID: "nope"}, userID)
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestConsume_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, &scriptedClient{})
	userID := uuid.NewString()
	eggs := seedItem(t, svc, userID, "egg", 6)
	milk := seedItem(t, svc, userID, "milk", 1)

	err := repo.WithTx(ctx, func(tx PantryRepository) error {
		_, err := Consume(ctx, tx, userID, map[uuid.UUID]float64{
			uuid.MustParse(eggs.ID): 2,
			uuid.MustParse(milk.ID): 5,
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	got, err := svc.GetItem(ctx, eggs.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, got.Quantity)
}

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &scriptedClient{})
	alice, bob := uuid.NewString(), uuid.NewString()
	item := seedItem(t, svc, alice, "flour", 1)
	seedItem(t, svc, bob, "sugar", 1)

	_, err := svc.GetItem(ctx, item.ID, bob)
	assert.ErrorIs(t, err, domain.ErrPantryItemNotFound)

	_, err = svc.UpdateItem(ctx, item.ID, domain.UpdatePantryItemRequest{Name: "stolen"}, bob)
	assert.ErrorIs(t, err, domain.ErrPantryItemNotFound)

	assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID, bob), domain.ErrPantryItemNotFound)

	_, err = svc.ConsumeItem(ctx, item.ID, domain.ConsumePantryItemRequest{Amount: 1}, bob)
	assert.ErrorIs(t, err, domain.ErrPantryItemNotFound)

	items, count, err := svc.ListItems(ctx, alice, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, items, 1)
	assert.Equal(t, "flour", items[0].Name)

	removed, err := svc.ClearPantry(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	_, err = svc.GetItem(ctx, item.ID, alice)
	assert.NoError(t, err)
}

func TestUpdateItem_Partial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &scriptedClient{})
	userID := uuid.NewString()
	item := seedItem(t, svc, userID, "apple", 3)
	qty := 5.0

	got, err := svc.UpdateItem(ctx, item.ID, domain.UpdatePantryItemRequest{Quantity: &qty, ExpiryDate: "2030-01-02"}, userID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Name)
	assert.Equal(t, 5.0, got.Quantity)
	assert.Equal(t, "1 unit", got.Nutrition.StandardUnit)

	stored, err := svc.GetItem(ctx, item.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, stored.Quantity)
	require.NotNil(t, stored.ExpiryDate)
	assert.Equal(t, "2030-01-02", stored.ExpiryDate.Format(dateLayout))
}

func receiptUpload(t *testing.T) *multipart.FileHeader {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 80))))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("receipt_image", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["receipt_image"][0]
}

func TestScanAndConfirmReceipt(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{reply: func(prompt string, hasImage bool) (string, error) {
		if hasImage {
			return `Items found: [{"name":" Bananas ","price":1.2,"quantity":"6","shelf_life_days":5},{"name":"Bread","price":3}]`, nil
		}
		return milkEnrichment, nil
	}}
	svc, repo := newTestService(t, client)
	userID := uuid.NewString()

	scan, err := svc.ScanReceipt(ctx, domain.ScanReceiptRequest{ReceiptImage: receiptUpload(t)}, userID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReceiptStatusProcessed, scan.Status)
	require.Len(t, scan.Items, 2)
	assert.Equal(t, "Bananas", scan.Items[0].Name)
	assert.Equal(t, 6.0, scan.Items[0].Quantity)
	assert.Equal(t, 1.0, scan.Items[1].Quantity)

	stored, err := repo.GetReceiptScanByID(ctx, scan.ScanID, userID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReceiptStatusProcessed, stored.Status)

	_, err = svc.ConfirmReceipt(ctx, domain.ConfirmReceiptRequest{
		ScanID: scan.ScanID,
		Items:  []domain.ConfirmReceiptItem{{Name: "Bananas", Quantity: 6, Unit: "units"}},
	}, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrReceiptScanNotFound)

	added, err := svc.ConfirmReceipt(ctx, domain.ConfirmReceiptRequest{
		ScanID: scan.ScanID,
		Items:  []domain.ConfirmReceiptItem{{Name: "Bananas", Quantity: 6, Unit: "units", Price: 1.2, ShelfLifeDays: 5}},
	}, userID)
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.NotNil(t, added[0].ExpiryDate)
	svc.Wait()
}

func TestScanReceipt_ModelFailureMarksScan(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{reply: func(string, bool) (string, error) { return "I cannot read this receipt.", nil }}
	svc, repo := newTestService(t, client)
	userID := uuid.NewString()

	_, err := svc.ScanReceipt(ctx, domain.ScanReceiptRequest{ReceiptImage: receiptUpload(t)}, userID)
	var extractErr *llm.ExtractionError
	require.ErrorAs(t, err, &extractErr)

	scans, err := listScans(repo, userID)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, entities.ReceiptStatusFailed, scans[0].Status)
	assert.NotEmpty(t, scans[0].Error)
}

func listScans(repo PantryRepository, userID string) ([]entities.ReceiptScan, error) {
	var scans []entities.ReceiptScan
	err := repo.(*pantryRepository).db.Where("user_id = ?", userID).Find(&scans).Error
	return scans, err
}

type memoryS3 struct {
	objects map[string][]byte
	deleted []string
}

func (m *memoryS3) UploadFile(_ context.Context, fileName string, data []byte, _, folder string) (string, error) {
	key := folder + "/" + fileName
	m.objects[key] = data
	return key, nil
}

func (m *memoryS3) GetPublicLinkKey(key string) string {
	return "https://bucket.example/" + key
}

func (m *memoryS3) DeleteFile(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.objects, key)
	return nil
}

func TestScanReceipt_ArchivesImage(t *testing.T) {
	client := &scriptedClient{reply: func(string, bool) (string, error) {
		return `[{"name":"Apples","price":2,"quantity":3}]`, nil
	}}
	s3 := &memoryS3{objects: map[string][]byte{}}
	repo := NewPantryRepository(testdb.New(t))
	svc := NewPantryService(repo, llm.NewService(client, nil), s3, Options{})

	scan, err := svc.ScanReceipt(context.Background(), domain.ScanReceiptRequest{ReceiptImage: receiptUpload(t)}, uuid.NewString())
	require.NoError(t, err)

	key := "receipts/receipt-" + scan.ScanID + ".jpg"
	assert.Contains(t, s3.objects, key)
	assert.Equal(t, "https://bucket.example/"+key, scan.ImageURL)
	assert.Empty(t, s3.deleted)
}
