package repository

import "errors"

// 対象が存在しない（gormのErrRecordNotFoundをここに寄せる）
var ErrNotFound = errors.New("not found")

// 一意制約違反
var ErrDuplicate = errors.New("duplicate")
