package db

import (
	"encoding/json"
	"fmt"
	"time"

	"contract-admin/config"
	"contract-admin/log"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// Pool hands out redis connections. *redis.Pool implements it.
type Pool interface {
	Get() redis.Conn
}

// InitRedis builds the connection pool and checks one connection.
func InitRedis(conf config.RedisConfig) (*redis.Pool, error) {
	log.Logger.Info("init redis", zap.String("address", conf.Address), zap.Int("db", conf.Db))
	pool := &redis.Pool{
		MaxIdle:     conf.MaxIdle,
		MaxActive:   conf.MaxActive,
		Wait:        true,
		IdleTimeout: time.Duration(conf.IdleTimeout) * time.Second,
		Dial: func() (redis.Conn, error) {
			opts := []redis.DialOption{redis.DialDatabase(conf.Db)}
			if conf.Password != "" {
				opts = append(opts, redis.DialPassword(conf.Password))
			}
			return redis.Dial("tcp", fmt.Sprintf("%s:%s", conf.Address, conf.Port), opts...)
		},
	}

	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	if _, err := conn.Do("ping"); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("redis init: %w", err)
	}
	return pool, nil
}

// RedisSet stores data as JSON, expiring after aliveSeconds when positive.
func RedisSet(p Pool, key string, data interface{}, aliveSeconds int) error {
	value, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return RedisSetString(p, key, string(value), aliveSeconds)
}

func RedisSetString(p Pool, key string, data string, aliveSeconds int) error {
	conn := p.Get()
	defer func() {
		_ = conn.Close()
	}()
	var err error
	if aliveSeconds > 0 {
		_, err = conn.Do("set", key, data, "EX", aliveSeconds)
	} else {
		_, err = conn.Do("set", key, data)
	}
	return err
}

// RedisGetString returns redis.ErrNil when key is absent.
func RedisGetString(p Pool, key string) (string, error) {
	conn := p.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.String(conn.Do("get", key))
}

// RedisMGet returns the raw values of keys, nil for absent ones.
func RedisMGet(p Pool, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	conn := p.Get()
	defer func() {
		_ = conn.Close()
	}()
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return redis.ByteSlices(conn.Do("mget", args...))
}

func RedisDelete(p Pool, key string) (bool, error) {
	conn := p.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.Bool(conn.Do("del", key))
}

func RedisExists(p Pool, key string) bool {
	conn := p.Get()
	defer func() {
		_ = conn.Close()
	}()
	exists, err := redis.Bool(conn.Do("exists", key))
	if err != nil {
		return false
	}
	return exists
}
