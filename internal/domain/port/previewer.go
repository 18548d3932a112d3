package port

// Previewer строит уменьшенную копию изображения для показа пользователю.
type Previewer interface {
	Preview(imageData []byte) ([]byte, error)
}
