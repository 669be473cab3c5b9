package bitcask

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/wanglei1037/casklog/storage"
	"github.com/wanglei1037/casklog/storage/fio"
	"github.com/wanglei1037/casklog/storage/index"
)

// tombstoneValue 墓碑记录携带的占位 value
// 线格式用零长度作为日志末尾哨兵，墓碑必须带一个非空的 value 才能落盘，
// 内容本身没有语义
var tombstoneValue = []byte{0}

// DB 表示 Bitcask 存储引擎的核心结构体
// 封装了数据文件管理、内存索引、布隆过滤器和配置选项
// 约定单写者：一个活跃文件只接受一个逻辑写者，读者可以并发读已落盘的偏移量
type DB struct {
	dir         string               // 数据目录
	activeFile  *DataFile            // 当前活跃的数据文件，唯一可写
	olderFiles  map[uint32]*DataFile // 已封存的数据文件集合，只读
	index       index.Index          // 内存索引
	bloomFilter *index.BloomFilter   // 布隆过滤器，快速判断 key 是否可能存在
	options     *Options             // 配置选项
	mu          sync.RWMutex         // 保证写入顺序以及文件集合的一致性
}

// Options 定义 DB 的配置选项
type Options struct {
	// DataFileSizeLimit 单个数据文件的大小限制（字节），超过后轮转新文件
	DataFileSizeLimit uint32

	// IndexType 内存索引类型
	IndexType index.IndexType

	// SyncWrites 每次写入后是否立即落盘
	SyncWrites bool

	// MMapAtStartup 启动时是否用内存映射打开已封存的文件
	// 封存文件不再追加，只读快照对它们是安全的
	MMapAtStartup bool

	// BloomFilterN 布隆过滤器预估的 key 数量
	BloomFilterN uint

	// BloomFilterFP 布隆过滤器的期望误判率，值越小占用内存越多
	BloomFilterFP float64
}

// Option 定义 Options 的配置函数
type Option func(*Options)

// WithDataFileSizeLimit 设置单文件大小限制
func WithDataFileSizeLimit(limit uint32) Option {
	return func(o *Options) {
		o.DataFileSizeLimit = limit
	}
}

// WithIndexType 设置索引类型
func WithIndexType(typ index.IndexType) Option {
	return func(o *Options) {
		o.IndexType = typ
	}
}

// WithSyncWrites 设置每次写入后立即落盘
func WithSyncWrites(sync bool) Option {
	return func(o *Options) {
		o.SyncWrites = sync
	}
}

// WithMMapAtStartup 设置启动时用内存映射打开封存文件
func WithMMapAtStartup(enable bool) Option {
	return func(o *Options) {
		o.MMapAtStartup = enable
	}
}

// WithBloomFilterFP 设置布隆过滤器的期望误判率
func WithBloomFilterFP(fp float64) Option {
	return func(o *Options) {
		o.BloomFilterFP = fp
	}
}

// Open 打开或创建一个 Bitcask 数据库
// 参数：
//   - dir: 数据库目录
//   - opts: 配置选项
//
// 返回：
//   - *DB: 数据库指针
//   - error: 打开错误
func Open(dir string, opts ...Option) (*DB, error) {
	options := &Options{
		DataFileSizeLimit: 64 * 1024 * 1024, // 默认 64MB
		IndexType:         index.IndexTypeBTree,
		BloomFilterN:      1000000,
		BloomFilterFP:     0.01,
	}
	for _, opt := range opts {
		opt(options)
	}

	db := &DB{
		dir:         dir,
		olderFiles:  make(map[uint32]*DataFile),
		index:       index.NewIndex(options.IndexType),
		bloomFilter: index.NewBloomFilter(options.BloomFilterN, options.BloomFilterFP),
		options:     options,
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	// 加载数据文件并重放日志重建索引
	fileIDs, err := db.loadDataFiles()
	if err != nil {
		return nil, fmt.Errorf("加载数据文件失败: %w", err)
	}
	if err := db.loadIndexFromDataFiles(fileIDs); err != nil {
		return nil, fmt.Errorf("重建索引失败: %w", err)
	}

	return db, nil
}

// loadDataFiles 扫描目录中的所有数据文件并打开
// 最大 ID 的文件是活跃文件，用标准 IO 打开；其余文件已封存，
// 按配置用标准 IO 或内存映射打开
func (db *DB) loadDataFiles() ([]uint32, error) {
	dirEntries, err := os.ReadDir(db.dir)
	if err != nil {
		return nil, err
	}

	var fileIDs []uint32
	for _, entry := range dirEntries {
		if !strings.HasSuffix(entry.Name(), DataFileNameSuffix) {
			continue
		}
		idStr := strings.TrimSuffix(entry.Name(), DataFileNameSuffix)
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return nil, ErrDataDirectoryCorrupted
		}
		fileIDs = append(fileIDs, uint32(id))
	}

	// 没有任何数据文件，创建第一个活跃文件
	if len(fileIDs) == 0 {
		activeFile, err := OpenDataFile(db.dir, 0, fio.StandardFIO)
		if err != nil {
			return nil, err
		}
		db.activeFile = activeFile
		return nil, nil
	}

	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	for i, fileID := range fileIDs {
		ioType := fio.StandardFIO
		if db.options.MMapAtStartup && i != len(fileIDs)-1 {
			ioType = fio.MemoryMap
		}
		dataFile, err := OpenDataFile(db.dir, fileID, ioType)
		if err != nil {
			return nil, err
		}
		if i == len(fileIDs)-1 {
			db.activeFile = dataFile
		} else {
			db.olderFiles[fileID] = dataFile
		}
	}
	return fileIDs, nil
}

// loadIndexFromDataFiles 按文件 ID 从小到大重放所有记录，重建索引和布隆过滤器
// 读到 ErrEndOfLog 说明这个文件的有效日志到此为止，属于正常终止
// 最后一个文件尾部的校验失败按崩溃截断处理：追加日志只会在尾部损坏，
// 有效数据到损坏点为止；损坏点之前的数据照常可用，损坏的文件被封存，
// 换一个新的活跃文件继续写
func (db *DB) loadIndexFromDataFiles(fileIDs []uint32) error {
	for i, fileID := range fileIDs {
		var dataFile *DataFile
		if fileID == db.activeFile.FileID {
			dataFile = db.activeFile
		} else {
			dataFile = db.olderFiles[fileID]
		}

		var offset uint32
		for {
			rec, size, err := dataFile.ReadRecord(offset)
			if err != nil {
				if errors.Is(err, ErrEndOfLog) {
					break
				}
				if errors.Is(err, ErrInvalidRecordCRC) && i == len(fileIDs)-1 {
					// 活跃文件尾部被截断，封存它并轮转
					if err := db.sealCorruptedActiveFile(); err != nil {
						return err
					}
					break
				}
				return fmt.Errorf("重放数据文件 %d 失败: %w", fileID, err)
			}

			if rec.Status == StatusDeleted {
				db.index.Delete(rec.Key)
			} else {
				db.index.Put(rec.Key, &storage.Position{
					FileID: fileID,
					Offset: offset,
					Size:   size,
				})
				db.bloomFilter.Add(rec.Key)
			}
			offset += size
		}
	}
	return nil
}

// sealCorruptedActiveFile 把尾部损坏的活跃文件转为封存文件并打开新的活跃文件
// 追加语义下写入总是落在物理末尾，继续在损坏的尾部之后写会留下
// 扫描不到的记录，所以换一个干净的文件
func (db *DB) sealCorruptedActiveFile() error {
	db.olderFiles[db.activeFile.FileID] = db.activeFile
	newFile, err := OpenDataFile(db.dir, db.activeFile.FileID+1, fio.StandardFIO)
	if err != nil {
		return err
	}
	db.activeFile = newFile
	return nil
}

// Put 写入键值对，key 和 value 都不能为空
// 参数：
//   - key: 键
//   - value: 值
//
// 返回：
//   - error: 写入错误
func (db *DB) Put(key []byte, value []byte) error {
	if len(key) == 0 {
		return ErrKeyIsEmpty
	}
	if len(value) == 0 {
		return ErrValueIsEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	rec := &LogRecord{Key: key, Value: value, Status: StatusNormal}
	pos, err := db.appendLogRecord(rec)
	if err != nil {
		return err
	}

	db.index.Put(key, pos)
	db.bloomFilter.Add(key)
	return nil
}

// Get 根据键获取值
// 参数：
//   - key: 键
//
// 返回：
//   - []byte: 值
//   - error: 读取错误，键不存在返回 storage.ErrKeyNotFound
func (db *DB) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrKeyIsEmpty
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	// 布隆过滤器返回 false 的 key 一定不存在，直接短路
	if !db.bloomFilter.Test(key) {
		return nil, storage.ErrKeyNotFound
	}

	pos := db.index.Get(key)
	if pos == nil {
		return nil, storage.ErrKeyNotFound
	}

	var dataFile *DataFile
	if pos.FileID == db.activeFile.FileID {
		dataFile = db.activeFile
	} else {
		dataFile = db.olderFiles[pos.FileID]
	}
	if dataFile == nil {
		return nil, ErrDataFileNotFound
	}

	rec, _, err := dataFile.ReadRecord(pos.Offset)
	if err != nil {
		return nil, fmt.Errorf("读取记录失败: %w", err)
	}
	if rec.Status == StatusDeleted {
		return nil, storage.ErrKeyNotFound
	}
	return rec.Value, nil
}

// Delete 删除键值对
// 追加一条墓碑记录标记删除，旧记录物理上仍然留在日志里，
// 等待合并清理
// 参数：
//   - key: 键
//
// 返回：
//   - error: 删除错误
func (db *DB) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrKeyIsEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	// key 不存在时无事可做
	if pos := db.index.Get(key); pos == nil {
		return nil
	}

	rec := &LogRecord{Key: key, Value: tombstoneValue, Status: StatusDeleted}
	if _, err := db.appendLogRecord(rec); err != nil {
		return err
	}

	db.index.Delete(key)
	return nil
}

// appendLogRecord 追加一条记录到活跃文件（调用前需要持有写锁）
// 返回这条记录的 Position
func (db *DB) appendLogRecord(rec *LogRecord) (*storage.Position, error) {
	// 活跃文件写满后轮转
	if db.activeFile.WriteOff >= db.options.DataFileSizeLimit {
		if err := db.rotateActiveFile(); err != nil {
			return nil, fmt.Errorf("轮转活跃文件失败: %w", err)
		}
	}

	writeOff := db.activeFile.WriteOff
	size, err := db.activeFile.Write(rec)
	if err != nil {
		return nil, err
	}

	if db.options.SyncWrites {
		if err := db.activeFile.Sync(); err != nil {
			return nil, err
		}
	}

	return &storage.Position{
		FileID: db.activeFile.FileID,
		Offset: writeOff,
		Size:   size,
	}, nil
}

// rotateActiveFile 封存当前活跃文件并打开新的活跃文件
func (db *DB) rotateActiveFile() error {
	// 先把已有数据持久化，再封存
	if err := db.activeFile.Sync(); err != nil {
		return err
	}
	db.olderFiles[db.activeFile.FileID] = db.activeFile

	newFile, err := OpenDataFile(db.dir, db.activeFile.FileID+1, fio.StandardFIO)
	if err != nil {
		return err
	}
	db.activeFile = newFile
	return nil
}

// Sync 将活跃文件的数据强制落盘
func (db *DB) Sync() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.activeFile.Sync()
}

// Close 关闭数据库
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.activeFile != nil {
		if err := db.activeFile.Close(); err != nil {
			return fmt.Errorf("关闭活跃文件失败: %w", err)
		}
	}
	for _, file := range db.olderFiles {
		if err := file.Close(); err != nil {
			return fmt.Errorf("关闭封存文件失败: %w", err)
		}
	}

	if db.index != nil {
		db.index.Close()
	}
	return nil
}

// 确保 DB 实现了 storage.Engine 接口
var _ storage.Engine = (*DB)(nil)
