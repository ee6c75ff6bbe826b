package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadWriteClient separa o pool de leitura (réplica) do pool de escrita.
// Quando a réplica não está configurada, os dois apontam para o mesmo pool.
type ReadWriteClient struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

type Config struct {
	ReadHost       string
	WriteHost      string
	Port           string
	DBName         string
	Username       string
	Password       string
	MaxConnections int
}

func NewReadWriteClient(cfg Config) (*ReadWriteClient, error) {
	writePool, err := NewPostgresClient(cfg.WriteHost, cfg.Port, cfg.DBName, cfg.Username, cfg.Password, cfg.MaxConnections)
	if err != nil {
		return nil, err
	}

	if cfg.ReadHost == "" || cfg.ReadHost == cfg.WriteHost {
		return &ReadWriteClient{readPool: writePool, writePool: writePool}, nil
	}

	readPool, err := NewPostgresClient(cfg.ReadHost, cfg.Port, cfg.DBName, cfg.Username, cfg.Password, cfg.MaxConnections)
	if err != nil {
		writePool.Close()
		return nil, err
	}

	return &ReadWriteClient{readPool: readPool, writePool: writePool}, nil
}

func (rwc *ReadWriteClient) GetReadPool() *pgxpool.Pool {
	return rwc.readPool
}

func (rwc *ReadWriteClient) GetWritePool() *pgxpool.Pool {
	return rwc.writePool
}

func (rwc *ReadWriteClient) Ping(ctx context.Context) error {
	return errors.Join(rwc.writePool.Ping(ctx), rwc.readPool.Ping(ctx))
}

func (rwc *ReadWriteClient) Close() {
	if rwc.readPool != rwc.writePool {
		rwc.readPool.Close()
	}
	rwc.writePool.Close()
}
