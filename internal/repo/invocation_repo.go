// Package repo persists the invocation audit trail and the contract event log.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"contract-admin/internal/dispatch"
	"contract-admin/log"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvocationRecord is one finished submission.
type InvocationRecord struct {
	Id           int64     `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	InvocationId string    `json:"invocation_id" gorm:"column:invocation_id;size:36;index"`
	Function     string    `json:"function" gorm:"column:function;size:128;index"`
	Kind         string    `json:"kind" gorm:"column:kind;size:8"`
	Args         string    `json:"args" gorm:"column:args;type:text"`
	Value        string    `json:"value" gorm:"column:value;size:80"`
	Outcome      string    `json:"outcome" gorm:"column:outcome;size:16"`
	Category     string    `json:"category" gorm:"column:category;size:32"`
	Message      string    `json:"message" gorm:"column:message;type:text"`
	TxHash       string    `json:"tx_hash" gorm:"column:tx_hash;size:66"`
	BlockNumber  uint64    `json:"block_number" gorm:"column:block_number"`
	Account      string    `json:"account" gorm:"column:account;size:42"`
	ChainId      uint64    `json:"chain_id" gorm:"column:chain_id"`
	DurationMs   int64     `json:"duration_ms" gorm:"column:duration_ms"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (InvocationRecord) TableName() string {
	return "invocation_records"
}

// NewRecord flattens an invocation and its result.
func NewRecord(inv *dispatch.Invocation, res dispatch.Result, now time.Time) InvocationRecord {
	rec := InvocationRecord{
		InvocationId: inv.ID,
		Function:     inv.Function.Name,
		Kind:         string(inv.Function.Kind),
		Outcome:      string(res.Outcome),
		Category:     string(res.Category),
		Message:      res.Message,
		TxHash:       res.Hash,
		BlockNumber:  res.BlockNumber,
		ChainId:      inv.ChainID,
		CreatedAt:    now,
	}
	if args, err := json.Marshal(inv.Args.Raw()); err == nil {
		rec.Args = string(args)
	}
	if inv.Value != nil {
		rec.Value = inv.Value.String()
	}
	if inv.Account != (common.Address{}) {
		rec.Account = inv.Account.Hex()
	}
	if !inv.StartedAt.IsZero() {
		rec.DurationMs = now.Sub(inv.StartedAt).Milliseconds()
	}
	return rec
}

// InvocationRepo stores records through gorm.
type InvocationRepo struct {
	db *gorm.DB
}

func NewInvocationRepo(db *gorm.DB) *InvocationRepo {
	return &InvocationRepo{db: db}
}

// InitTable creates or migrates the audit table.
func (r *InvocationRepo) InitTable() error {
	return r.db.AutoMigrate(&InvocationRecord{})
}

func (r *InvocationRepo) Save(ctx context.Context, rec *InvocationRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Recent returns the latest records, newest first.
func (r *InvocationRepo) Recent(ctx context.Context, function string, limit int) ([]InvocationRecord, error) {
	var out []InvocationRecord
	q := r.db.WithContext(ctx).Order("id desc").Limit(limit)
	if function != "" {
		q = q.Where("function = ?", function)
	}
	err := q.Find(&out).Error
	return out, err
}

// Finished records every invocation except the in-flight ones.
func (r *InvocationRepo) Finished(ctx context.Context, inv *dispatch.Invocation, res dispatch.Result) {
	if !res.Terminal() {
		return
	}
	rec := NewRecord(inv, res, time.Now())
	if err := r.Save(context.WithoutCancel(ctx), &rec); err != nil {
		log.Logger.Error("save invocation record failed", zap.String("invocation", inv.ID), zap.Error(err))
	}
}
