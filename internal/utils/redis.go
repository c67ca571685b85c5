// 包 utils：Redis 连接工具
package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"ph-address/internal/logger"
)

// OpenRedis 打开 Redis 客户端并探活
// 约束：addr 为空时返回 nil（禁用）；探活失败仅记录日志，仍返回客户端，由调用方决定是否回退
func OpenRedis(ctx context.Context, addr, pass string, db int) *redis.Client {
	if addr == "" {
		logger.L().Info("redis_disabled")
		return nil
	}
	rc := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pctx).Err(); err != nil {
		logger.L().Error("redis_ping_error", "addr", addr, "db", db, "err", err)
	} else {
		logger.L().Info("redis_ping_ok", "addr", addr, "db", db)
	}
	return rc
}
