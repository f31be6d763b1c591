package repo

import (
	"context"
	"encoding/json"
	"time"

	"contract-admin/internal/chain"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRecord is one contract log. A log is identified by its transaction
// hash and log index.
type EventRecord struct {
	Id          int64     `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	Contract    string    `json:"contract" gorm:"column:contract;size:42;index"`
	Name        string    `json:"name" gorm:"column:name;size:128;index"`
	Args        string    `json:"args" gorm:"column:args;type:text"`
	TxHash      string    `json:"tx_hash" gorm:"column:tx_hash;size:66;uniqueIndex:idx_event_log"`
	LogIndex    uint      `json:"log_index" gorm:"column:log_index;uniqueIndex:idx_event_log"`
	BlockNumber uint64    `json:"block_number" gorm:"column:block_number;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (EventRecord) TableName() string {
	return "event_records"
}

func NewEventRecord(ev chain.Event, now time.Time) EventRecord {
	rec := EventRecord{
		Contract:    ev.Address.Hex(),
		Name:        ev.Name,
		TxHash:      ev.TxHash.Hex(),
		LogIndex:    ev.LogIndex,
		BlockNumber: ev.BlockNumber,
		CreatedAt:   now,
	}
	if args, err := json.Marshal(ev.Args); err == nil {
		rec.Args = string(args)
	}
	return rec
}

// Event turns the record back into the decoded form.
func (r EventRecord) Event() chain.Event {
	ev := chain.Event{
		Name:        r.Name,
		Address:     common.HexToAddress(r.Contract),
		TxHash:      common.HexToHash(r.TxHash),
		LogIndex:    r.LogIndex,
		BlockNumber: r.BlockNumber,
	}
	_ = json.Unmarshal([]byte(r.Args), &ev.Args)
	return ev
}

// EventRepo stores contract events through gorm.
type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) InitTable() error {
	return r.db.AutoMigrate(&EventRecord{})
}

// Save inserts ev unless its log is already stored.
func (r *EventRepo) Save(ctx context.Context, ev chain.Event) (bool, error) {
	rec := NewEventRecord(ev, time.Now())
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Recent returns the latest events, newest first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]chain.Event, error) {
	var recs []EventRecord
	err := r.db.WithContext(ctx).Order("block_number desc, log_index desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]chain.Event, len(recs))
	for i, rec := range recs {
		out[i] = rec.Event()
	}
	return out, nil
}

func (r *EventRepo) LastBlock(ctx context.Context) (uint64, error) {
	var last uint64
	err := r.db.WithContext(ctx).Model(&EventRecord{}).Select("COALESCE(MAX(block_number), 0)").Scan(&last).Error
	return last, err
}
