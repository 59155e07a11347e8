package domain

import (
	"fmt"
	"unicode/utf8"
)

const (
	// nameMinLen и nameMaxLen задают допустимую длину имени в символах.
	nameMinLen = 1
	nameMaxLen = 50
)

// PositiveInt — строго положительное целое значение (цена, процент, сумма).
type PositiveInt int64

// NewPositiveInt создаёт PositiveInt или возвращает ошибку, если значение не положительное.
func NewPositiveInt(v int64) (PositiveInt, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrValueNotPositive, v)
	}
	return PositiveInt(v), nil
}

// Int64 возвращает значение как обычное целое для арифметики вызывающего кода.
func (p PositiveInt) Int64() int64 {
	return int64(p)
}

// CountNumber — неотрицательный счётчик (баллы, остатки расходников).
type CountNumber int64

// NewCountNumber создаёт CountNumber или возвращает ошибку для отрицательных значений.
func NewCountNumber(v int64) (CountNumber, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d", ErrCountNegative, v)
	}
	return CountNumber(v), nil
}

// Int64 возвращает значение как обычное целое.
func (c CountNumber) Int64() int64 {
	return int64(c)
}

// Name — непустая строка ограниченной длины (название услуги, код акции).
type Name string

// NewName создаёт Name, проверяя длину в символах.
func NewName(v string) (Name, error) {
	length := utf8.RuneCountInString(v)
	if length < nameMinLen || length > nameMaxLen {
		return "", fmt.Errorf("%w: length %d", ErrNameLength, length)
	}
	return Name(v), nil
}

// String возвращает значение имени.
func (n Name) String() string {
	return string(n)
}

// SlotTime — время слота в формате HH:MM. Нулевое дополнение делает строки
// сравнимыми в порядке времени суток обычным сравнением строк.
type SlotTime string

// NewSlotTime создаёт SlotTime, проверяя формат и диапазоны часов/минут.
func NewSlotTime(v string) (SlotTime, error) {
	if len(v) != 5 || v[2] != ':' {
		return "", fmt.Errorf("%w: %q", ErrSlotTimeFormat, v)
	}
	hh, ok := twoDigits(v[0], v[1])
	if !ok || hh > 23 {
		return "", fmt.Errorf("%w: %q", ErrSlotTimeFormat, v)
	}
	mm, ok := twoDigits(v[3], v[4])
	if !ok || mm > 59 {
		return "", fmt.Errorf("%w: %q", ErrSlotTimeFormat, v)
	}
	return SlotTime(v), nil
}

// String возвращает время в исходном виде HH:MM.
func (t SlotTime) String() string {
	return string(t)
}

// Before сообщает, что время t раньше other в пределах одного дня.
func (t SlotTime) Before(other SlotTime) bool {
	return string(t) < string(other)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
