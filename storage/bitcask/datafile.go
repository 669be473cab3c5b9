package bitcask

import (
	"fmt"
	"hash/crc32"
	"path/filepath"

	"github.com/wanglei1037/casklog/storage/fio"
)

// DataFileNameSuffix 数据文件的固定后缀
const DataFileNameSuffix = ".data"

// DataFile 表示一个物理上追加写入的数据段
// 持有一个存储后端实例和一个写游标，把记录级的读写翻译成后端调用
// 游标只在追加成功后前进；文件从不截断、从不原地改写
type DataFile struct {
	FileID    uint32        // 文件 ID，由上层分配，约定目录内单调递增
	WriteOff  uint32        // 当前文件末尾的写偏移量，新文件从 0 开始
	ioManager fio.IOManager // 底层 IO 管理器，生命周期与 DataFile 绑定
}

// GetDataFileName 根据目录和文件 ID 生成数据文件的完整路径
// 文件 ID 渲染成 9 位十进制数并补零，例如目录 /data 下 ID 42 对应
// /data/000000042.data，这样目录列表的字典序与 ID 的数值序一致
func GetDataFileName(dir string, fileID uint32) string {
	return filepath.Join(dir, fmt.Sprintf("%09d", fileID)+DataFileNameSuffix)
}

// OpenDataFile 打开或创建一个数据文件
// 参数：
//   - dir: 文件所在目录
//   - fileID: 文件 ID
//   - ioType: 后端 IO 类型（标准文件 IO 或内存映射）
//
// 返回：
//   - *DataFile: 数据文件指针
//   - error: 打开错误
func OpenDataFile(dir string, fileID uint32, ioType fio.IOType) (*DataFile, error) {
	fileName := GetDataFileName(dir, fileID)
	ioManager, err := fio.NewIOManager(fileName, ioType)
	if err != nil {
		return nil, err
	}

	size, err := ioManager.Size()
	if err != nil {
		ioManager.Close()
		return nil, err
	}

	return &DataFile{
		FileID:    fileID,
		WriteOff:  uint32(size),
		ioManager: ioManager,
	}, nil
}

// Write 编码一条记录并追加写入
// 调用前记下的 WriteOff 就是这条记录的起始偏移量，应由调用方连同
// 返回的字节数一起存入索引；本方法自身不更新任何索引
// 参数：
//   - rec: 要写入的记录
//
// 返回：
//   - uint32: 实际写入的字节数
//   - error: 写入错误
func (df *DataFile) Write(rec *LogRecord) (uint32, error) {
	encBytes, _ := EncodeLogRecord(rec)
	n, err := df.ioManager.Write(encBytes)
	if err != nil {
		return 0, fmt.Errorf("写入数据文件失败: %w", err)
	}
	df.WriteOff += uint32(n)
	return uint32(n), nil
}

// ReadRecord 从指定偏移量读取一条完整的记录
// 头部本身是变长的，所以分两段读：先按最大头部长度读一段解析出
// 实际头部和 key/value 长度，再精确读出记录体
// 参数：
//   - offset: 记录的起始偏移量
//
// 返回：
//   - *LogRecord: 重建出的记录
//   - uint32: 这条记录实际占用的字节数（头部 + key + value）
//   - error: ErrEndOfLog 表示有效日志到此为止，ErrInvalidRecordCRC 表示校验失败
func (df *DataFile) ReadRecord(offset uint32) (*LogRecord, uint32, error) {
	fileSize, err := df.ioManager.Size()
	if err != nil {
		return nil, 0, err
	}
	if int64(offset) >= fileSize {
		return nil, 0, ErrEndOfLog
	}

	// 靠近文件末尾时，按最大头部长度读会越过文件边界，
	// 此时收缩读取长度：读到的字节更少本身就是日志结束的信号
	var headerBytes int64 = maxRecordHeaderSize
	if int64(offset)+headerBytes > fileSize {
		headerBytes = fileSize - int64(offset)
	}
	headerBuf, err := df.readNBytes(headerBytes, int64(offset))
	if err != nil {
		return nil, 0, err
	}

	header, headerSize := decodeLogRecordHeader(headerBuf)
	if header == nil {
		return nil, 0, ErrEndOfLog
	}
	// 零长度是日志末尾哨兵，不再尝试读记录体
	if header.keySize == 0 || header.valueSize == 0 {
		return nil, 0, ErrEndOfLog
	}
	if header.status != StatusNormal && header.status != StatusDeleted {
		return nil, 0, ErrInvalidRecordStatus
	}

	// 声明的记录体越过了文件末尾，说明尾部被截断
	if int64(offset)+int64(headerSize)+int64(header.keySize)+int64(header.valueSize) > fileSize {
		return nil, 0, ErrInvalidRecordCRC
	}

	rec := &LogRecord{Status: header.status}
	kvBuf, err := df.readNBytes(int64(header.keySize)+int64(header.valueSize), int64(offset)+int64(headerSize))
	if err != nil {
		return nil, 0, err
	}
	rec.Key = kvBuf[:header.keySize]
	rec.Value = kvBuf[header.keySize:]

	// 对实际读到的 {status, 长度字段, key, value} 重新计算校验和
	if getLogRecordCRC(rec, headerBuf[crc32.Size:headerSize]) != header.crc {
		return nil, 0, ErrInvalidRecordCRC
	}

	return rec, headerSize + header.keySize + header.valueSize, nil
}

// Sync 将缓冲的写入同步到磁盘
func (df *DataFile) Sync() error {
	return df.ioManager.Sync()
}

// Close 关闭数据文件
func (df *DataFile) Close() error {
	return df.ioManager.Close()
}

// SetIOManager 切换底层 IO 管理器
// 用于把已封存的文件从标准 IO 切换成内存映射（或反向切换成可写），
// 会先关闭当前后端再重新打开
func (df *DataFile) SetIOManager(dir string, ioType fio.IOType) error {
	if err := df.ioManager.Close(); err != nil {
		return err
	}
	ioManager, err := fio.NewIOManager(GetDataFileName(dir, df.FileID), ioType)
	if err != nil {
		return err
	}
	df.ioManager = ioManager
	return nil
}

func (df *DataFile) readNBytes(n int64, offset int64) ([]byte, error) {
	b := make([]byte, n)
	_, err := df.ioManager.Read(b, offset)
	if err != nil {
		return nil, fmt.Errorf("读取数据失败 (offset=%d, size=%d): %w", offset, n, err)
	}
	return b, nil
}
