package dynamo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/google/uuid"

	"feedback-api/internal/domain"
	"feedback-api/internal/infra/metrics"
)

// Config описывает таблицу отзывов в DynamoDB.
type Config struct {
	Table string
	// IndexPattern — имя GSI для сортировки, %s заменяется на поле сортировки.
	IndexPattern string
	CountIndex   string
}

// Store читает отзывы из DynamoDB. Курсор хранит ключ последнего отданного отзыва (ключ таблицы и индекса).
type Store struct {
	client dynamodbiface.DynamoDBAPI
	cfg    Config
}

var _ domain.FeedbackRepo = (*Store)(nil)

// NewSession создаёт AWS-сессию; endpoint нужен для локального DynamoDB.
func NewSession(region, endpoint string) (*session.Session, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	return session.NewSession(cfg)
}

// NewStore создаёт хранилище поверх готового клиента.
func NewStore(client dynamodbiface.DynamoDBAPI, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// New создаёт хранилище из сессии.
func New(sess *session.Session, cfg Config) *Store {
	return NewStore(dynamodb.New(sess), cfg)
}

type feedbackItem struct {
	ID            string  `dynamodbav:"id"`
	LocationID    string  `dynamodbav:"locationId"`
	Rate          int     `dynamodbav:"rate"`
	Comment       string  `dynamodbav:"comment"`
	UserName      string  `dynamodbav:"userName"`
	UserAvatarURL *string `dynamodbav:"userAvatarUrl"`
	Date          string  `dynamodbav:"date"`
	Type          string  `dynamodbav:"type"`
}

type startKeyCursor struct {
	Signature string                              `json:"s"`
	Key       map[string]*dynamodb.AttributeValue `json:"k"`
}

// FetchPage реализует domain.FeedbackStore.
func (s *Store) FetchPage(ctx context.Context, req domain.FetchRequest) (domain.FeedbackPage, error) {
	var forward bool
	switch strings.ToLower(req.Sort.Direction) {
	case "asc":
		forward = true
	case "desc":
		forward = false
	default:
		return domain.FeedbackPage{}, fmt.Errorf("%w: направление %q", domain.ErrUnsupportedSort, req.Sort.Direction)
	}

	if req.Limit <= 0 {
		return domain.FeedbackPage{}, fmt.Errorf("некорректный размер страницы: %d", req.Limit)
	}

	input := &dynamodb.QueryInput{
		TableName:                aws.String(s.cfg.Table),
		IndexName:                aws.String(fmt.Sprintf(s.cfg.IndexPattern, req.Sort.Property)),
		KeyConditionExpression:   aws.String("#loc = :loc"),
		ExpressionAttributeNames: map[string]*string{"#loc": aws.String("locationId")},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":loc": {S: aws.String(req.LocationID)},
		},
		ScanIndexForward: aws.Bool(forward),
		// Лишняя запись показывает, есть ли следующая страница.
		Limit: aws.Int64(int64(req.Limit) + 1),
	}
	if req.Type != nil {
		input.FilterExpression = aws.String("#type = :type")
		input.ExpressionAttributeNames["#type"] = aws.String("type")
		input.ExpressionAttributeValues[":type"] = &dynamodb.AttributeValue{S: aws.String(string(*req.Type))}
	}
	if req.Cursor != "" {
		key, err := decodeStartKey(req.Cursor, querySignature(req))
		if err != nil {
			return domain.FeedbackPage{}, err
		}
		input.ExclusiveStartKey = key
	}

	// Limit в DynamoDB действует до FilterExpression, поэтому страницу добираем несколькими запросами.
	var raw []map[string]*dynamodb.AttributeValue
	for {
		start := time.Now()
		out, err := s.client.QueryWithContext(ctx, input)
		metrics.ObserveNetworkRequest("dynamodb", "feedbacks_page", s.cfg.Table, start, err)
		if err != nil {
			return domain.FeedbackPage{}, err
		}
		raw = append(raw, out.Items...)
		if len(raw) > req.Limit || len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	hasMore := len(raw) > req.Limit
	if hasMore {
		raw = raw[:req.Limit]
	}
	var items []feedbackItem
	if err := dynamodbattribute.UnmarshalListOfMaps(raw, &items); err != nil {
		return domain.FeedbackPage{}, fmt.Errorf("разбор отзывов: %w", err)
	}
	entries := make([]domain.FeedbackEntry, 0, len(items))
	for _, item := range items {
		e, err := item.toDomain()
		if err != nil {
			return domain.FeedbackPage{}, err
		}
		entries = append(entries, e)
	}

	page := domain.FeedbackPage{Entries: entries}
	if hasMore {
		key, err := indexKey(raw[len(raw)-1], req.Sort.Property)
		if err != nil {
			return domain.FeedbackPage{}, err
		}
		page.NextCursor, err = encodeStartKey(startKeyCursor{Signature: querySignature(req), Key: key})
		if err != nil {
			return domain.FeedbackPage{}, fmt.Errorf("кодирование курсора: %w", err)
		}
	}
	return page, nil
}

// indexKey достаёт из записи атрибуты ключа таблицы и GSI для ExclusiveStartKey.
func indexKey(item map[string]*dynamodb.AttributeValue, sortProperty string) (map[string]*dynamodb.AttributeValue, error) {
	key := make(map[string]*dynamodb.AttributeValue, 3)
	for _, name := range []string{"id", "locationId", sortProperty} {
		v, ok := item[name]
		if !ok {
			return nil, fmt.Errorf("в отзыве нет ключевого атрибута %q", name)
		}
		key[name] = v
	}
	return key, nil
}

// CountByLocation реализует domain.FeedbackCounter через Select=COUNT.
func (s *Store) CountByLocation(ctx context.Context, locationID string) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(s.cfg.Table),
		IndexName:                aws.String(s.cfg.CountIndex),
		KeyConditionExpression:   aws.String("#loc = :loc"),
		ExpressionAttributeNames: map[string]*string{"#loc": aws.String("locationId")},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":loc": {S: aws.String(locationID)},
		},
		Select: aws.String(dynamodb.SelectCount),
	}
	total := 0
	for {
		start := time.Now()
		out, err := s.client.QueryWithContext(ctx, input)
		metrics.ObserveNetworkRequest("dynamodb", "feedbacks_count", s.cfg.Table, start, err)
		if err != nil {
			return 0, err
		}
		total += int(aws.Int64Value(out.Count))
		// COUNT тоже ограничен 1 МБ на ответ.
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Ping проверяет доступность таблицы.
func (s *Store) Ping(ctx context.Context) error {
	start := time.Now()
	_, err := s.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.cfg.Table)})
	metrics.ObserveNetworkRequest("dynamodb", "describe_table", s.cfg.Table, start, err)
	return err
}

func (i feedbackItem) toDomain() (domain.FeedbackEntry, error) {
	id, err := uuid.Parse(i.ID)
	if err != nil {
		return domain.FeedbackEntry{}, fmt.Errorf("id отзыва %q: %w", i.ID, err)
	}
	date, err := time.Parse(time.RFC3339Nano, i.Date)
	if err != nil {
		return domain.FeedbackEntry{}, fmt.Errorf("дата отзыва %s: %w", i.ID, err)
	}
	return domain.FeedbackEntry{
		ID:            id,
		Rate:          i.Rate,
		Comment:       i.Comment,
		UserName:      i.UserName,
		UserAvatarURL: i.UserAvatarURL,
		Date:          date,
		Type:          domain.FeedbackType(i.Type),
		LocationID:    i.LocationID,
	}, nil
}

func querySignature(req domain.FetchRequest) string {
	t := ""
	if req.Type != nil {
		t = string(*req.Type)
	}
	return strings.Join([]string{req.LocationID, t, req.Sort.Property, strings.ToLower(req.Sort.Direction)}, "|")
}

func encodeStartKey(c startKeyCursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeStartKey(token, signature string) (map[string]*dynamodb.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	var c startKeyCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	if c.Signature != signature || len(c.Key) == 0 {
		return nil, fmt.Errorf("%w: курсор выдан для другого запроса", domain.ErrInvalidCursor)
	}
	return c.Key, nil
}
