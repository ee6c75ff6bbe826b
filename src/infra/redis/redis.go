package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient encapsula o go-redis com prefixo de chave e TTL padrão.
// Funciona com um nó único ou com cluster (UniversalClient decide pelo
// número de endereços).
type RedisClient struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

func NewRedisClient(addrs string, poolSize int, defaultTTL time.Duration, prefix string) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),

		PoolSize:     poolSize,
		MinIdleConns: 2,
		MaxRedirects: 3,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return NewFromClient(client, defaultTTL, prefix)
}

// NewFromClient permite injetar um client já construído (usado nos testes).
func NewFromClient(client redis.UniversalClient, defaultTTL time.Duration, prefix string) *RedisClient {
	return &RedisClient{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

func (rc *RedisClient) key(key string) string {
	return rc.prefix + key
}

// SetWithRegistry grava o valor e o registra em cada chave de registro, para
// que InvalidateRegistry consiga apagar todas as entradas relacionadas.
func (rc *RedisClient) SetWithRegistry(ctx context.Context, cacheKey string, cacheValue []byte, registryKeys ...string) error {
	pipe := rc.client.TxPipeline()

	fields := map[string]interface{}{
		"data":      cacheValue,
		"cached_at": time.Now().Unix(),
	}
	pipe.HSet(ctx, rc.key(cacheKey), fields)
	pipe.Expire(ctx, rc.key(cacheKey), rc.defaultTTL)

	for _, registryKey := range registryKeys {
		pipe.SAdd(ctx, rc.key(registryKey), rc.key(cacheKey))
		pipe.Expire(ctx, rc.key(registryKey), rc.defaultTTL)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// GetKey devolve (nil, false, nil) em cache miss.
func (rc *RedisClient) GetKey(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := rc.client.HGet(ctx, rc.key(key), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// InvalidateRegistry apaga todas as chaves registradas e o próprio registro.
func (rc *RedisClient) InvalidateRegistry(ctx context.Context, registryKeys ...string) error {
	var failures []string

	for _, registryKey := range registryKeys {
		registry := rc.key(registryKey)
		members, err := rc.client.SMembers(ctx, registry).Result()
		if err != nil {
			failures = append(failures, fmt.Sprintf("registry %s: %v", registryKey, err))
			continue
		}

		// Em cluster as chaves podem estar em slots diferentes; um DEL por chave.
		for _, member := range append(members, registry) {
			if err := rc.client.Del(ctx, member).Err(); err != nil {
				failures = append(failures, fmt.Sprintf("key %s: %v", member, err))
			}
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("invalidation errors: %s", strings.Join(failures, "; "))
	}
	return nil
}

// Allow implementa uma janela fixa: até limit chamadas por window para a mesma
// chave. A janela começa na primeira chamada.
func (rc *RedisClient) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	counter := rc.key("ratelimit:" + key)

	pipe := rc.client.TxPipeline()
	incr := pipe.Incr(ctx, counter)
	pipe.ExpireNX(ctx, counter, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("RedisClient.Allow - %w", err)
	}

	return incr.Val() <= int64(limit), nil
}

func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
