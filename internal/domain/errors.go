// Package domain содержит бизнес-сущности и доменные ошибки координатора.
package domain

import "errors"

// Доменные ошибки. Передают бизнес-ошибки между слоями приложения;
// HTTP обработчики отображают их в статусы через handler.HandleDomainError.
var (
	// ErrOrderNotFound возвращается, когда заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("заказ не найден")

	// ErrPaymentNotFound возвращается, когда платёжная запись по intent id не найдена.
	ErrPaymentNotFound = errors.New("платёжная запись не найдена")

	// ErrInvalidAmount возвращается, когда сумма заказа не положительна.
	ErrInvalidAmount = errors.New("сумма заказа должна быть больше нуля")

	// ErrEmptyFeedback возвращается при попытке добавить пустой отзыв.
	ErrEmptyFeedback = errors.New("текст отзыва не может быть пустым")

	// ErrOrderCannotCancel возвращается при попытке отменить оплаченный
	// или завершённый заказ.
	ErrOrderCannotCancel = errors.New("заказ нельзя отменить в текущем статусе")

	// ErrOrderCannotComplete возвращается при подтверждении получения
	// заказа, который не находится в статусе paid.
	ErrOrderCannotComplete = errors.New("подтвердить получение можно только оплаченного заказа")

	// ErrOrderNotPayable возвращается, когда заказ нельзя перевести в paid
	// или открыть для него новый intent (заказ уже оплачен либо терминален).
	ErrOrderNotPayable = errors.New("заказ не подлежит оплате в текущем статусе")

	// ErrDuplicateIntent возвращается при регистрации уже известного intent id.
	ErrDuplicateIntent = errors.New("платёжная запись с таким intent id уже существует")

	// ErrInvalidSignature возвращается при неверной или отсутствующей
	// подписи webhook события.
	ErrInvalidSignature = errors.New("подпись webhook не прошла проверку")

	// ErrProcessorMisconfigured возвращается, когда не задан API ключ процессора.
	ErrProcessorMisconfigured = errors.New("платёжный процессор не сконфигурирован")

	// ErrProcessorUnavailable возвращается, когда процессор недоступен
	// или вернул ошибку.
	ErrProcessorUnavailable = errors.New("платёжный процессор недоступен")

	// ErrSimulationForbidden возвращается при неверном credential dev-симуляции.
	ErrSimulationForbidden = errors.New("неверный credential симуляции")
)
