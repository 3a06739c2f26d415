package perm

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/goadmin/pkg/database"
	"github.com/goadmin/pkg/logger"
	"github.com/goadmin/pkg/utils"
	"go.uber.org/zap"
)

const (
	genCounterKey  = "gen"     // 代号计数器
	genCurrentKey  = "current" // 当前生效代号指针
	roleKeyTTL     = 24 * time.Hour
	genPointerTTL  = 0 // 指针不过期
	cachePrefixKey = "perm"
)

// Index 角色权限索引。
// 以 Redis 作为读穿缓存：角色编码 -> 权限标识集合。
// 全量刷新采用"新代号写入后切换指针"的快照交换方式，
// 避免先删后写造成读方短暂看到空权限集。
type Index struct {
	cache *database.Cache
	repo  Repository
}

// NewIndex 创建角色权限索引
func NewIndex(cache *database.Cache, repo Repository) *Index {
	return &Index{cache: cache, repo: repo}
}

// NewDefaultIndex 使用全局Redis创建角色权限索引
func NewDefaultIndex(repo Repository) *Index {
	return NewIndex(database.NewCache(cachePrefixKey), repo)
}

// roleKey 生成某一代号下的角色权限key
func roleKey(gen int64, roleCode string) string {
	return strconv.FormatInt(gen, 10) + ":" + roleCode
}

// currentGen 读取当前生效代号，0 表示缓存尚未建立
func (i *Index) currentGen(ctx context.Context) int64 {
	val, err := i.cache.Get(ctx, genCurrentKey)
	if err != nil {
		return 0
	}
	gen, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return gen
}

// RefreshAll 全量重建所有启用角色的权限集合。
// 先在新代号下写入完整快照，再原子切换当前代号指针；
// 旧代号的key靠TTL自然过期。
func (i *Index) RefreshAll(ctx context.Context) error {
	roles, err := i.repo.FindEnabledRoles(ctx)
	if err != nil {
		return err
	}

	gen, err := i.cache.Incr(ctx, genCounterKey)
	if err != nil {
		return err
	}

	for _, role := range roles {
		perms, err := i.repo.FindPermsByRoleCode(ctx, role.Code)
		if err != nil {
			return err
		}
		if err := i.writeRolePerms(ctx, gen, role.Code, perms); err != nil {
			return err
		}
	}

	// 快照写完后切换指针，读方要么看到旧代，要么看到完整的新代
	if err := i.cache.Set(ctx, genCurrentKey, gen, genPointerTTL); err != nil {
		return err
	}

	logger.Info("权限缓存全量刷新完成", zap.Int64("generation", gen), zap.Int("roles", len(roles)))
	return nil
}

// Refresh 重算并覆盖单个角色的权限集合。
// 先算后写，任何时刻key上要么是旧值要么是新值。
func (i *Index) Refresh(ctx context.Context, roleCode string) error {
	perms, err := i.repo.FindPermsByRoleCode(ctx, roleCode)
	if err != nil {
		return err
	}

	gen := i.currentGen(ctx)
	if gen == 0 {
		// 缓存尚未建立，读路径会直接回源
		return nil
	}
	return i.writeRolePerms(ctx, gen, roleCode, perms)
}

// Rename 角色编码变更：写入新编码的权限集合并清除旧编码
func (i *Index) Rename(ctx context.Context, oldCode, newCode string) error {
	if err := i.Refresh(ctx, newCode); err != nil {
		return err
	}

	gen := i.currentGen(ctx)
	if gen == 0 {
		return nil
	}
	return i.cache.Del(ctx, roleKey(gen, oldCode))
}

// PermissionsFor 返回角色编码集合的权限并集；空集合返回空权限。
// 缓存未命中或不可用时回源重算，绝不因缓存故障拒绝请求。
func (i *Index) PermissionsFor(ctx context.Context, roleCodes []string) ([]string, error) {
	if len(roleCodes) == 0 {
		return []string{}, nil
	}

	union := make([]string, 0)
	gen := i.currentGen(ctx)

	for _, code := range roleCodes {
		perms, ok := i.readCached(ctx, gen, code)
		if !ok {
			// 回源重算，顺带补写缓存
			var err error
			perms, err = i.repo.FindPermsByRoleCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if gen != 0 {
				if werr := i.writeRolePerms(ctx, gen, code, perms); werr != nil {
					logger.Warn("权限缓存回写失败", zap.String("roleCode", code), zap.Error(werr))
				}
			}
		}
		union = append(union, perms...)
	}

	return utils.Unique(union), nil
}

// readCached 读取缓存中的角色权限集合
func (i *Index) readCached(ctx context.Context, gen int64, roleCode string) ([]string, bool) {
	if gen == 0 {
		return nil, false
	}

	val, err := i.cache.Get(ctx, roleKey(gen, roleCode))
	if err != nil {
		return nil, false
	}

	var perms []string
	if err := json.Unmarshal([]byte(val), &perms); err != nil {
		logger.Warn("权限缓存内容损坏", zap.String("roleCode", roleCode), zap.Error(err))
		return nil, false
	}
	return perms, true
}

// writeRolePerms 序列化并写入角色权限集合
func (i *Index) writeRolePerms(ctx context.Context, gen int64, roleCode string, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return i.cache.Set(ctx, roleKey(gen, roleCode), data, roleKeyTTL)
}
