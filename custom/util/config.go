package util

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type DbConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

func (c DbConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

type ServerConfig struct {
	Postgres DbConfig   `yaml:"postgres"`
	Replicas []DbConfig `yaml:"replicas"`
	ShopPort int        `yaml:"shop_port"`
	// HS256 secret shared with the identity provider that signs caller tokens.
	JwtSecret string `yaml:"jwt_secret"`
	// Reject order status moves that go backwards in the pipeline.
	EnforceForwardStatus bool `yaml:"enforce_forward_status"`
}

func (c *ServerConfig) GetConf(fileName string) *ServerConfig {
	yamlFile, err := os.ReadFile(fileName)
	if err != nil {
		log.Printf("Read yaml file %s failed: %s ", fileName, err.Error())
	}
	err = yaml.Unmarshal(yamlFile, c)
	if err != nil {
		log.Fatalf("Unmarshal: %v", err)
	}
	c.applyEnv()

	return c
}

func (c *ServerConfig) applyEnv() {
	if v := os.Getenv("SHOP_JWT_SECRET"); v != "" {
		c.JwtSecret = v
	}
	if v := os.Getenv("SHOP_DB_PASSWORD"); v != "" {
		c.Postgres.Password = v
		for i := range c.Replicas {
			c.Replicas[i].Password = v
		}
	}
}

// OpenDB connects to the primary and, when configured, routes reads issued
// through dal's ReadDB to the replicas.
func OpenDB(c *ServerConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.Postgres.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, r := range c.Replicas {
			replicas = append(replicas, postgres.Open(r.DSN()))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxIdleConns(10).
			SetMaxOpenConns(100).
			SetConnMaxLifetime(time.Hour)
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("failed to register read replicas: %w", err)
		}
	}
	return db, nil
}
