package memory

import (
	"strings"
	"time"

	"notes-versioning-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// AccountCache maps a token subject (email) to the account it names, so the
// auth middleware does not hit the database on every request.
type AccountCache struct {
	cache *cache.Cache
}

func NewAccountCache(ttl time.Duration) *AccountCache {
	return &AccountCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *AccountCache) Save(user *entity.User) {
	c.cache.Set(key(user.Email), user, cache.DefaultExpiration)
}

func (c *AccountCache) Get(email string) (*entity.User, bool) {
	if x, found := c.cache.Get(key(email)); found {
		return x.(*entity.User), true
	}
	return nil, false
}

func (c *AccountCache) Delete(email string) {
	c.cache.Delete(key(email))
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
