package index

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// BloomFilter 是布隆过滤器的并发安全包装
// 用于在查索引之前快速判断一个 key 是否可能存在：
// Test 返回 false 的 key 一定不存在，可以直接短路掉磁盘读
type BloomFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewBloomFilter 创建一个新的布隆过滤器
// 参数：
//   - n: 预期存储的元素数量
//   - fp: 期望的误判率
func NewBloomFilter(n uint, fp float64) *BloomFilter {
	// NewWithEstimates 根据 n 和 fp 自动计算最优的位数组大小和哈希函数个数
	return &BloomFilter{
		filter: bloom.NewWithEstimates(n, fp),
	}
}

// Add 添加一个 key 到布隆过滤器
func (bf *BloomFilter) Add(key []byte) {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	bf.filter.Add(key)
}

// Test 测试一个 key 是否可能存在
// 返回：
//   - bool: true 表示可能存在（有误判率），false 表示一定不存在
func (bf *BloomFilter) Test(key []byte) bool {
	bf.mu.RLock()
	defer bf.mu.RUnlock()
	return bf.filter.Test(key)
}

// Reset 重置布隆过滤器
// 布隆过滤器不支持删除单个元素，引擎做合并清理后整体重建
func (bf *BloomFilter) Reset() {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	m := bf.filter.Cap()
	k := bf.filter.K()
	bf.filter = bloom.New(m, k)
}
