package preview

const styleID = "image-preview-styles"

const stylesheet = `
#image-preview-modal {
  display: none;
  position: fixed;
  z-index: 10000;
  left: 0;
  top: 0;
  width: 100%;
  height: 100%;
  background-color: rgba(0, 0, 0, 0.9);
  animation: fadeIn 0.3s ease;
}
#image-preview-modal.show {
  display: flex;
  align-items: center;
  justify-content: center;
}
.modal-overlay {
  position: relative;
  max-width: 90%;
  max-height: 90%;
  display: flex;
  flex-direction: column;
  align-items: center;
}
.modal-content {
  position: relative;
  background: white;
  border-radius: 8px;
  padding: 20px;
  box-shadow: 0 4px 20px rgba(0, 0, 0, 0.3);
  max-width: 100%;
  max-height: 100%;
  overflow: auto;
}
.modal-close {
  position: absolute;
  top: 10px;
  right: 15px;
  color: #aaa;
  font-size: 28px;
  font-weight: bold;
  cursor: pointer;
  z-index: 10001;
}
.modal-close:hover,
.modal-close:focus {
  color: #000;
}
.modal-image {
  max-width: 100%;
  max-height: 80vh;
  display: block;
  margin: 0 auto;
  border-radius: 4px;
  animation: zoomIn 0.3s ease;
}
.modal-caption {
  text-align: center;
  margin-top: 10px;
  font-size: 14px;
  color: #666;
  font-style: italic;
}
@keyframes fadeIn {
  from { opacity: 0; }
  to { opacity: 1; }
}
@keyframes zoomIn {
  from { transform: scale(0.8); opacity: 0; }
  to { transform: scale(1); opacity: 1; }
}
@media (max-width: 768px) {
  .modal-content { margin: 20px; padding: 15px; }
  .modal-image { max-height: 70vh; }
}
`
