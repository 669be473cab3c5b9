package bitcask

import "errors"

// ErrEndOfLog 表示读到了有效日志的末尾
// 解码出的 key 或 value 长度为 0，或者文件剩余字节不足一个头部时返回，
// 调用方把它当作整文件扫描的正常终止条件，而不是硬性失败
var ErrEndOfLog = errors.New("read end of valid log")

// ErrInvalidRecordCRC 表示记录结构可以解析但校验和不匹配
// 通常意味着尾部截断或位级损坏（最常见的来源是追加写中途崩溃）
var ErrInvalidRecordCRC = errors.New("invalid log record crc value")

// ErrInvalidRecordStatus 表示解码出了无法识别的状态字节
// 这是致命的格式违例，原样上抛，绝不静默纠正成默认值
var ErrInvalidRecordStatus = errors.New("invalid log record status")

// ErrKeyIsEmpty 表示传入的 key 为空
var ErrKeyIsEmpty = errors.New("the key is empty")

// ErrValueIsEmpty 表示传入的 value 为空
// 线格式用零长度作为日志末尾哨兵，空 value 的记录无法表示
var ErrValueIsEmpty = errors.New("the value is empty")

// ErrDataFileNotFound 表示索引指向的数据文件不存在
var ErrDataFileNotFound = errors.New("data file not found")

// ErrDataDirectoryCorrupted 表示数据目录中存在无法解析的数据文件名
var ErrDataDirectoryCorrupted = errors.New("data directory maybe corrupted")
