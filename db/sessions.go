package db

import (
	"errors"
	"time"

	"contract-admin/utils"

	"github.com/gomodule/redigo/redis"
)

const sessionKeyPrefix = "session:"

// Sessions tracks the token of each logged in admin. Logout deletes it, which
// revokes the token before it expires.
type Sessions interface {
	Save(username, token string, ttlSeconds int) error
	Valid(username, token string) (bool, error)
	Delete(username string) error
}

type RedisSessions struct {
	pool Pool
}

func NewRedisSessions(pool Pool) *RedisSessions {
	return &RedisSessions{pool: pool}
}

func (s *RedisSessions) Save(username, token string, ttlSeconds int) error {
	return RedisSetString(s.pool, sessionKeyPrefix+username, token, ttlSeconds)
}

func (s *RedisSessions) Valid(username, token string) (bool, error) {
	stored, err := RedisGetString(s.pool, sessionKeyPrefix+username)
	if errors.Is(err, redis.ErrNil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == token, nil
}

func (s *RedisSessions) Delete(username string) error {
	_, err := RedisDelete(s.pool, sessionKeyPrefix+username)
	return err
}

// MemorySessions is the Sessions store of a single process without redis.
type MemorySessions struct {
	tokens utils.Map[string, session]
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{}
}

type session struct {
	token   string
	expires time.Time
}

func (s *MemorySessions) Save(username, token string, ttlSeconds int) error {
	sess := session{token: token}
	if ttlSeconds > 0 {
		sess.expires = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	s.tokens.Set(username, sess)
	return nil
}

func (s *MemorySessions) Valid(username, token string) (bool, error) {
	sess, ok := s.tokens.Get(username)
	if !ok {
		return false, nil
	}
	if !sess.expires.IsZero() && time.Now().After(sess.expires) {
		s.tokens.Del(username)
		return false, nil
	}
	return sess.token == token, nil
}

func (s *MemorySessions) Delete(username string) error {
	s.tokens.Del(username)
	return nil
}
