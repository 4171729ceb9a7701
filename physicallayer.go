package physmon

import "context"

// PhysicalLayer is the external bidirectional channel the Monitor supervises: a serial port, a TCP
// socket, or similar. Opens and closes are asynchronous: AsyncOpen/AsyncClose must return promptly, and
// the physical layer reports completion back through the Monitor's OnLayerOpen/OnOpenFailure/OnLayerClose
// methods, delivered on the same executor the Monitor is otherwise driven from.
//
// A PhysicalLayer is borrowed by the Monitor, never owned: the Monitor never constructs or closes the
// layer's underlying resources directly.
type PhysicalLayer interface {
	// AsyncOpen requests the layer to begin opening. Completion is reported later via OnLayerOpen or
	// OnOpenFailure. AsyncOpen must not block until the open completes.
	AsyncOpen(ctx context.Context)
	// AsyncClose requests the layer to begin closing. Completion is reported later via OnLayerClose.
	// AsyncClose must not block until the close completes.
	AsyncClose(ctx context.Context)
}
