/*
go-monodepth runs pretrained two-stage monocular depth networks (ResNet
feature encoder plus disparity decoder) over single images or dataset splits,
converts the raw disparity output into calibrated depth using dataset
specific stereo baseline scale factors, and persists both numeric arrays and
colormapped visualizations.

The model runtime is backed by ONNX Runtime via onnxruntime_go.  Checkpoints
are a directory holding encoder.onnx and depth.onnx exported at a fixed feed
resolution, which is read back from the encoder's input shape.

See the cmd/monodepth CLI for end to end usage.
*/
package monodepth
