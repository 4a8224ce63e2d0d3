package service

import (
	"context"
	"errors"
	"fmt"
	"removebg/internal/entity"
	"removebg/internal/model"
	"removebg/internal/remover"
	"removebg/internal/storage"
	"removebg/internal/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// 错误分类
var (
	// ErrNoAttachments 触发命令的消息没有携带附件（InputError）。
	ErrNoAttachments = errors.New("no attachments")
	// ErrRemoteProcessing 远程去背景失败。
	ErrRemoteProcessing = remover.ErrRemoteProcessing
	// ErrDecode 返回的字节无法解析为图片。
	ErrDecode = errors.New("decode output image")
	// ErrStorage 输出文件写入失败。
	ErrStorage = errors.New("store output image")
	// ErrPersistence 历史记录写入失败。
	ErrPersistence = errors.New("record history")
)

// Cause 是失败原因的分类名。
type Cause string

const (
	CauseNone             Cause = ""
	CauseInput            Cause = "InputError"
	CauseRemoteProcessing Cause = "RemoteProcessingError"
	CauseDecode           Cause = "DecodeError"
	CauseStorage          Cause = "StorageError"
	CausePersistence      Cause = "PersistenceError"
	CauseUnknown          Cause = "UnknownError"
)

// CauseOf 将错误归类。
func CauseOf(err error) Cause {
	switch {
	case err == nil:
		return CauseNone
	case errors.Is(err, ErrNoAttachments):
		return CauseInput
	case errors.Is(err, ErrRemoteProcessing):
		return CauseRemoteProcessing
	case errors.Is(err, ErrDecode):
		return CauseDecode
	case errors.Is(err, ErrStorage):
		return CauseStorage
	case errors.Is(err, ErrPersistence):
		return CausePersistence
	default:
		return CauseUnknown
	}
}

// Attachment 用户消息上的一张图片。
type Attachment struct {
	Name string
	URL  string
}

// Result 一张图片处理成功后的输出。
type Result struct {
	RecordID   uint
	Width      int
	Height     int
	SizeMB     float64
	OutputPath string
	FileName   string
	PublicURL  string
	Data       []byte
	CreatedAt  time.Time

	// 与 FileName 的扩展名一致
	ContentType string
}

// Outcome 单个附件的处理结果：Result 与 Err 二者有且仅有一个非空。
type Outcome struct {
	Attachment Attachment
	Result     *Result
	Err        error
}

// Succeeded 是否处理成功
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.Result != nil
}

// Cause 返回失败原因分类，成功时为空。
func (o Outcome) Cause() Cause {
	if o.Succeeded() {
		return CauseNone
	}
	if o.Err == nil {
		return CauseUnknown
	}
	return CauseOf(o.Err)
}

// RemovalService 去背景流水线：远程处理 -> 解析尺寸 -> 写文件 -> 写历史记录
type RemovalService struct {
	remover   remover.BackgroundRemover
	repo      model.Repository
	storage   storage.Storage
	publicURL func(key string) string
	now       func() time.Time
}

// NewRemovalService 创建流水线实例
func NewRemovalService(r remover.BackgroundRemover, repo model.Repository, store storage.Storage) *RemovalService {
	return &RemovalService{
		remover: r,
		repo:    repo,
		storage: store,
		now:     time.Now,
	}
}

// SetPublicURLBuilder 设置存储路径到公开 URL 的映射
func (s *RemovalService) SetPublicURLBuilder(fn func(key string) string) {
	s.publicURL = fn
}

// Validate 检查附件列表是否可处理
func Validate(attachments []Attachment) error {
	if len(attachments) == 0 {
		return ErrNoAttachments
	}
	return nil
}

// ProcessAttachments 按输入顺序逐个处理附件，每个附件恰好产生一个 Outcome。
// 单个附件失败不会中断后续附件。
func (s *RemovalService) ProcessAttachments(ctx context.Context, requester string, attachments []Attachment) []Outcome {
	outcomes := make([]Outcome, 0, len(attachments))
	for idx, att := range attachments {
		result, err := s.processAttachment(ctx, requester, att)

		fields := logrus.Fields{
			"requester":  requester,
			"attachment": att.Name,
			"index":      idx,
		}
		if err != nil {
			logrus.WithError(err).WithFields(fields).WithField("cause", CauseOf(err)).Warn("attachment processing failed")
			outcomes = append(outcomes, Outcome{Attachment: att, Err: err})
			continue
		}

		fields["record_id"] = result.RecordID
		fields["path"] = result.OutputPath
		fields["size_mb"] = result.SizeMB
		logrus.WithFields(fields).Info("attachment processed")
		outcomes = append(outcomes, Outcome{Attachment: att, Result: result})
	}
	return outcomes
}

// processAttachment 处理单个附件，任何一步失败都会跳过余下步骤
func (s *RemovalService) processAttachment(ctx context.Context, requester string, att Attachment) (*Result, error) {
	if s.remover == nil {
		return nil, fmt.Errorf("%w: remover not configured", ErrRemoteProcessing)
	}
	if strings.TrimSpace(att.URL) == "" {
		return nil, fmt.Errorf("%w: attachment %q has no url", ErrRemoteProcessing, att.Name)
	}

	data, err := s.remover.RemoveBackground(ctx, att.URL)
	if err != nil {
		if !errors.Is(err, ErrRemoteProcessing) {
			err = fmt.Errorf("%w: %v", ErrRemoteProcessing, err)
		}
		return nil, err
	}

	meta, err := utils.DecodeImageMeta(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if s.storage == nil {
		return nil, fmt.Errorf("%w: storage not configured", ErrStorage)
	}
	ext := utils.GuessExtension(meta, data)
	obj, err := s.storage.Save(ctx, data, storage.SaveOptions{
		Prefix:    "output",
		Extension: ext,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	sizeMB := utils.SizeInMB(len(data))
	createdAt := s.now().UTC()

	if s.repo == nil {
		return nil, fmt.Errorf("%w: repository not configured", ErrPersistence)
	}
	record := &entity.DbHistory{
		Username:  requester,
		ImageName: obj.Key,
		Width:     meta.Width,
		Height:    meta.Height,
		Size:      sizeMB,
		CreatedAt: createdAt,
	}
	if err := s.repo.CreateHistory(ctx, record); err != nil {
		// 已写入的文件保留，不做回滚
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	result := &Result{
		RecordID:    record.ID,
		Width:       meta.Width,
		Height:      meta.Height,
		SizeMB:      sizeMB,
		OutputPath:  obj.Key,
		FileName:    obj.Name,
		Data:        data,
		CreatedAt:   createdAt,
		ContentType: utils.MimeFromExtension(ext),
	}
	if s.publicURL != nil {
		result.PublicURL = s.publicURL(obj.Key)
	}
	return result, nil
}
