package db

import (
	"fmt"
	"time"

	"contract-admin/config"
	"contract-admin/log"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitMysql opens the audit database. An empty address disables it.
func InitMysql(conf config.MysqlConfig) (*gorm.DB, error) {
	if conf.Address == "" {
		log.Logger.Info("mysql disabled")
		return nil, nil
	}
	log.Logger.Info("init mysql", zap.String("address", conf.Address), zap.String("db", conf.DbName))

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.UserName, conf.Password, conf.Address, conf.Port, conf.DbName)
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       dsn,
		DefaultStringSize:         256,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("mysql init: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(conf.MaxLifeTime) * time.Second)

	return db, nil
}
