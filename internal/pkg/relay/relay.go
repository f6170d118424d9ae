package relay

import (
	"Herald/internal/pkg/redis"
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// Subscription 单频道长连接订阅，Close 后 Messages 通道关闭
type Subscription interface {
	Messages() <-chan string
	Close() error
}

// Relay 按频道广播的发布/订阅抽象
// 发布为尽力而为：无订阅者时消息不被任何人观察到
type Relay interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) Subscription
}

type redisRelay struct{}

// NewRedisRelay 基于 Redis Pub/Sub 的广播实现
func NewRedisRelay() Relay {
	return &redisRelay{}
}

func (r *redisRelay) Publish(ctx context.Context, channel string, payload []byte) error {
	return redis.Publish(ctx, channel, payload)
}

func (r *redisRelay) Subscribe(ctx context.Context, channel string) Subscription {
	sub := &redisSubscription{
		pubsub: redis.Subscribe(ctx, channel),
		out:    make(chan string, 16),
	}
	go sub.pump()
	return sub
}

type redisSubscription struct {
	pubsub *goredis.PubSub
	out    chan string
}

// pump 将 Redis 订阅消息搬运到出口通道，订阅关闭后出口通道随之关闭
func (s *redisSubscription) pump() {
	for msg := range s.pubsub.Channel() {
		s.out <- msg.Payload
	}
	close(s.out)
}

func (s *redisSubscription) Messages() <-chan string {
	return s.out
}

// Close 释放订阅，底层连接归还连接池，重复调用无副作用
func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
