package main

import "time"

type Config struct {
	Host           string        `env:"HOST,default=localhost"`
	Port           int           `env:"PORT,default=8080"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	NatsURL        string        `env:"NATS_URL,default=nats://localhost:4222"`
	NatsTimeout    time.Duration `env:"NATS_TIMEOUT,default=5s"`
	JWTSecret      string        `env:"JWT_SECRET,required=true"`
	JWTTTL         time.Duration `env:"JWT_TTL,default=24h"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
}
